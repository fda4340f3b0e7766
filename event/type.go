// Package event carries achievement notifications from the frame loop to presentation handlers
package event

import (
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType int

const (
	// EventTick is the zero value; never pushed
	EventTick EventType = iota

	// EventAchievementUnlocked signals a definition triggered this frame
	// Trigger: Publisher on Poller notify
	// Consumer: badge.Overlay | Payload: *UnlockPayload
	EventAchievementUnlocked

	// EventSoundRequest asks the audio layer to play an unlock sound
	// Trigger: Publisher when the definition is not silent
	// Consumer: audio.Player | Payload: *SoundRequestPayload
	EventSoundRequest

	// EventKeyPressed carries host input into the frame loop
	// Trigger: input goroutine
	// Consumer: host conditions | Payload: *KeyPayload
	EventKeyPressed

	// EventAchievementDeleted signals a definition or achieved name was removed
	// Trigger: host after Registry.Delete
	// Consumer: status line | Payload: *DeletedPayload
	EventAchievementDeleted
)

var typeNames = map[EventType]string{
	EventTick:                "Tick",
	EventAchievementUnlocked: "AchievementUnlocked",
	EventSoundRequest:        "SoundRequest",
	EventKeyPressed:          "KeyPressed",
	EventAchievementDeleted:  "AchievementDeleted",
}

// String returns the registered name, or a numeric form for unknown types
func (t EventType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// GameEvent represents a single event with metadata
type GameEvent struct {
	Type      EventType
	Payload   any
	Frame     int64 // Poller frame the event was raised on
	Timestamp time.Time
}

// Tick is the dispatch context handed to handlers
type Tick struct {
	Frame int64
	Now   time.Time
}
