package audio

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Service wraps Player as a service.Service
// Handles graceful degradation when no audio device is available
type Service struct {
	player   *Player
	logger   *zap.Logger
	disabled *atomic.Bool
}

// NewService creates an audio service around player; logger may be nil
func NewService(player *Player, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		player:   player,
		logger:   logger,
		disabled: player.metrics.Bools.Get("audio.disabled"),
	}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: bool - initial mute state; other args are ignored
func (s *Service) Init(args ...any) error {
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok {
			s.player.SetMuted(muted)
		}
	}
	return nil
}

// Start implements service.Service
// A missing device disables audio instead of failing startup
func (s *Service) Start() error {
	if s.disabled.Load() {
		return nil
	}
	if err := s.player.Initialize(); err != nil {
		s.disabled.Store(true)
		s.logger.Info("audio disabled, no output device", zap.Error(err))
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	s.player.Cleanup()
	return nil
}

// IsDisabled returns true if audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Player returns the wrapped player; it stays safe to call when disabled
func (s *Service) Player() *Player {
	return s.player
}
