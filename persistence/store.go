// Package persistence stores the set of achieved names and writes it off the frame loop
package persistence

import "context"

// RecordKey is the single field of the JSON record
const RecordKey = "achievements_got_names"

// Store reads and wholesale-overwrites the achieved-name list
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, names []string) error
}

// Record is the on-disk JSON layout
type Record struct {
	Names *[]string `json:"achievements_got_names"`
}

func newRecord(names []string) Record {
	if names == nil {
		names = []string{}
	}
	return Record{Names: &names}
}
