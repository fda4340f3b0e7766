// Package core holds process-wide crash handling for goroutines that share a terminal
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// Finisher restores the terminal; tcell.Screen satisfies it
type Finisher interface {
	Fini()
}

var (
	crashScreen atomic.Pointer[Finisher]

	// Overridable in tests
	crashOutput io.Writer = os.Stderr
	exit                  = os.Exit
)

// SetCrashScreen registers the screen to restore before a crash report is printed
// Pass nil to clear
func SetCrashScreen(f Finisher) {
	if f == nil {
		crashScreen.Store(nil)
		return
	}
	crashScreen.Store(&f)
}

// HandleCrash restores the terminal, prints the panic with its stack trace, and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if f := crashScreen.Load(); f != nil {
		(*f).Fini()
	}

	fmt.Fprintf(crashOutput, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())
	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword so a crash never leaves the terminal in raw mode
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
