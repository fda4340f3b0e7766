package event

import (
	"github.com/lixenwraith/trophy/achievement"
)

// Publisher turns poller unlocks into queued events
// Implements achievement.Notifier; Push never blocks so it is safe mid-scan
type Publisher struct {
	queue *Queue
}

// NewPublisher creates a publisher over queue
func NewPublisher(queue *Queue) *Publisher {
	return &Publisher{queue: queue}
}

// Notify implements achievement.Notifier
// Emits the unlock, then a sound request unless the definition is silent
func (p *Publisher) Notify(u achievement.Unlock) {
	p.queue.Push(GameEvent{
		Type:      EventAchievementUnlocked,
		Payload:   &UnlockPayload{Unlock: u},
		Frame:     u.Frame,
		Timestamp: u.At,
	})

	if u.Definition.Sound.Kind() == achievement.SoundSilent {
		return
	}
	p.queue.Push(GameEvent{
		Type:      EventSoundRequest,
		Payload:   &SoundRequestPayload{Sound: u.Definition.Sound, Name: u.Definition.Name},
		Frame:     u.Frame,
		Timestamp: u.At,
	})
}

// EmitKey pushes a key press from an input goroutine
func EmitKey(q *Queue, r rune, name string, frame int64) {
	q.Push(GameEvent{
		Type:    EventKeyPressed,
		Payload: &KeyPayload{Rune: r, Name: name},
		Frame:   frame,
	})
}

// EmitDeleted reports a Registry.Delete outcome
func EmitDeleted(q *Queue, name string, wasAchieved bool, frame int64) {
	q.Push(GameEvent{
		Type:    EventAchievementDeleted,
		Payload: &DeletedPayload{Name: name, WasAchieved: wasAchieved},
		Frame:   frame,
	})
}
