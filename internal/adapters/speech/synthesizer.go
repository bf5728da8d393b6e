package speech

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/voicepartner/internal/domain/settings"
	"github.com/okian/voicepartner/pkg/logger"
)

// LogSynthesizer "speaks" by logging the utterance. It keeps a history so
// callers and tests can see what the partner said.
type LogSynthesizer struct {
	log    logger.Logger
	voices []settings.Voice

	mu     sync.Mutex
	spoken []settings.Utterance
}

// NewLogSynthesizer creates a synthesizer that reports voices as its
// available voice list.
func NewLogSynthesizer(log logger.Logger, voices ...settings.Voice) *LogSynthesizer {
	return &LogSynthesizer{log: log, voices: voices}
}

// Speak logs u and records it as spoken.
func (s *LogSynthesizer) Speak(ctx context.Context, u settings.Utterance) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	voice := ""
	if u.Voice != nil {
		voice = u.Voice.Name
	}
	if s.log != nil {
		s.log.Info(ctx, "partner speaks",
			logger.String("text", u.Text),
			logger.String("lang", u.Lang),
			logger.Float64("rate", u.Rate),
			logger.Float64("pitch", u.Pitch),
			logger.String("voice", voice),
		)
	}
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.mu.Unlock()
	return nil
}

// Voices returns the voices the synthesizer was created with.
func (s *LogSynthesizer) Voices(context.Context) ([]settings.Voice, error) {
	return append([]settings.Voice(nil), s.voices...), nil
}

// Spoken returns every utterance spoken so far.
func (s *LogSynthesizer) Spoken() []settings.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]settings.Utterance(nil), s.spoken...)
}
