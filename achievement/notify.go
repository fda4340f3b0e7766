package achievement

import "time"

// Unlock is delivered to the presentation layer on the frame an achievement triggers
type Unlock struct {
	Definition Definition
	Frame      int64
	At         time.Time
}

// Notifier receives unlocks synchronously from the poller
type Notifier interface {
	Notify(Unlock)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Unlock)

// Notify implements Notifier
func (f NotifierFunc) Notify(u Unlock) { f(u) }

// Notifiers fans out to each notifier in order
type Notifiers []Notifier

// Notify implements Notifier
func (ns Notifiers) Notify(u Unlock) {
	for _, n := range ns {
		if n != nil {
			n.Notify(u)
		}
	}
}
