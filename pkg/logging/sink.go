package logging

import "github.com/rs/zerolog"

// Sink accepts leveled log records with a structured context. Implementations
// must be safe for concurrent use; each call is one independent record.
type Sink interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// zerologSink writes each record as a single zerolog event.
type zerologSink struct {
	logger zerolog.Logger
}

// NewSink returns a Sink backed by logger.
func NewSink(logger zerolog.Logger) Sink {
	return &zerologSink{logger: logger}
}

func (s *zerologSink) Info(msg string, fields map[string]any) {
	s.logger.Info().Fields(fields).Msg(msg)
}

func (s *zerologSink) Error(msg string, fields map[string]any) {
	s.logger.Error().Fields(fields).Msg(msg)
}

func (s *zerologSink) Debug(msg string, fields map[string]any) {
	s.logger.Debug().Fields(fields).Msg(msg)
}

// Nop returns a Sink that discards everything.
func Nop() Sink {
	return NewSink(zerolog.Nop())
}
