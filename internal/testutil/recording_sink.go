package testutil

import "sync"

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Fields  map[string]any
}

// RecordingSink captures log calls in memory. Safe for concurrent use.
type RecordingSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Info(msg string, fields map[string]any) {
	s.record("info", msg, fields)
}

func (s *RecordingSink) Error(msg string, fields map[string]any) {
	s.record("error", msg, fields)
}

func (s *RecordingSink) Debug(msg string, fields map[string]any) {
	s.record("debug", msg, fields)
}

func (s *RecordingSink) record(level, msg string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, LogRecord{Level: level, Message: msg, Fields: fields})
}

// Records returns a copy of everything captured so far.
func (s *RecordingSink) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ByLevel returns captured records at level.
func (s *RecordingSink) ByLevel(level string) []LogRecord {
	var out []LogRecord
	for _, r := range s.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}
