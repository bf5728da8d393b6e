package service

import (
	"time"

	"github.com/okian/voicepartner/internal/adapters/speech"
	"github.com/okian/voicepartner/internal/domain/scoring"
	"github.com/okian/voicepartner/internal/domain/settings"
	"github.com/okian/voicepartner/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the attempt queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the attempt ID cache. Zero or less is unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithXPPerLevel sets how much XP a learner level takes.
func WithXPPerLevel(xp int) Option {
	return func(s *Service) {
		if xp > 0 {
			s.xpPerLevel = xp
		}
	}
}

// WithDefaultLocale sets the locale stamped on attempts that name none.
func WithDefaultLocale(locale string) Option {
	return func(s *Service) {
		if locale != "" {
			s.defaultLocale = locale
		}
	}
}

// WithSettings seeds the learner's settings.
func WithSettings(st settings.Settings) Option {
	return func(s *Service) {
		s.initial = st
	}
}

// WithShutdownTimeout bounds how long Stop waits for the backlog to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithScorer replaces the heuristic scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithSynthesizer sets where partner lines are spoken.
func WithSynthesizer(syn speech.Synthesizer) Option {
	return func(s *Service) {
		if syn != nil {
			s.synth = syn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
