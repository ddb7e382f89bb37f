package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("Log line is not valid JSON: %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestSink_LevelsAndFields(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	buf := &bytes.Buffer{}
	sink := NewSink(zerolog.New(buf))

	sink.Debug("Processing URL", map[string]any{"url": "http://a"})
	sink.Info("Getting quotes", map[string]any{"url_count": 2})
	sink.Error("Error processing URL", map[string]any{"url": "http://b", "error": "boom"})

	records := decodeLines(t, buf)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expected := []struct {
		level string
		msg   string
		key   string
	}{
		{"debug", "Processing URL", "url"},
		{"info", "Getting quotes", "url_count"},
		{"error", "Error processing URL", "error"},
	}
	for i, want := range expected {
		rec := records[i]
		if rec["level"] != want.level {
			t.Errorf("record %d level = %v, want %s", i, rec["level"], want.level)
		}
		if rec["message"] != want.msg {
			t.Errorf("record %d message = %v, want %s", i, rec["message"], want.msg)
		}
		if _, ok := rec[want.key]; !ok {
			t.Errorf("record %d missing field %q", i, want.key)
		}
	}
}

func TestSink_NilFields(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewSink(zerolog.New(buf))

	sink.Error("no context", nil)

	records := decodeLines(t, buf)
	if len(records) != 1 || records[0]["message"] != "no context" {
		t.Errorf("Unexpected records: %v", records)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestSink_ConcurrentWrites(t *testing.T) {
	out := &lockedBuffer{}
	sink := NewSink(zerolog.New(out))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sink.Error("Error processing URL", map[string]any{"url": fmt.Sprintf("http://host/%d", i)})
		}(i)
	}
	wg.Wait()

	records := decodeLines(t, &out.buf)
	if len(records) != writers {
		t.Errorf("Expected %d intact records, got %d", writers, len(records))
	}
}

func TestNop(t *testing.T) {
	sink := Nop()
	sink.Info("discarded", map[string]any{"k": "v"})
	sink.Error("discarded", nil)
	sink.Debug("discarded", nil)
}
