package event

import (
	"github.com/lixenwraith/trophy/achievement"
)

// UnlockPayload carries the unlocked definition
type UnlockPayload struct {
	Unlock achievement.Unlock
}

// SoundRequestPayload names the sound to play
type SoundRequestPayload struct {
	Sound achievement.Sound
	Name  string // Achievement that requested it, for logging
}

// KeyPayload is a single key press; Rune is zero for non-printable keys
type KeyPayload struct {
	Rune rune
	Name string
}

// DeletedPayload reports a Registry.Delete result
type DeletedPayload struct {
	Name        string
	WasAchieved bool
}
