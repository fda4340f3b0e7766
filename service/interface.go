// Package service runs the long-lived helpers around the achievement core
// (persistence writer, audio backend) with dependency-ordered lifecycle
package service

// Service is a background subsystem owned by a Hub
//
// The hub calls Init on every service, then Start on every service, both in
// dependency order; Stop runs in reverse and may be called more than once
type Service interface {
	// Name is the unique key other services list in Dependencies
	Name() string

	// Dependencies names the services that must Init and Start first
	Dependencies() []string

	// Init receives the args given to Hub.InitAll
	Init(args ...any) error

	Start() error

	Stop() error
}
