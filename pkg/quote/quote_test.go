package quote

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestResultVariants(t *testing.T) {
	s := Success("Get to the choppa!")
	if !s.IsSuccess() {
		t.Error("Success result should report IsSuccess")
	}
	if s.Text() != "Get to the choppa!" {
		t.Errorf("Text() = %q, want %q", s.Text(), "Get to the choppa!")
	}
	if s.Message() != "" {
		t.Errorf("Message() = %q, want empty", s.Message())
	}

	f := Failure("server exploded")
	if f.IsSuccess() {
		t.Error("Failure result should not report IsSuccess")
	}
	if f.Message() != "server exploded" {
		t.Errorf("Message() = %q, want %q", f.Message(), "server exploded")
	}
	if f.Text() != "" {
		t.Errorf("Text() = %q, want empty", f.Text())
	}
}

func TestResultMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected string
	}{
		{"success", Success("I'll be back"), `{"Arnie Quote":"I'll be back"}`},
		{"failure", Failure("Your request has been terminated"), `{"FAILURE":"Your request has been terminated"}`},
		{"empty failure", Failure(""), `{"FAILURE":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Marshal = %s, want %s", data, tt.expected)
			}
		})
	}
}

func TestResultUnmarshalJSON(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`{"Arnie Quote":"Hasta la vista, baby"}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r != Success("Hasta la vista, baby") {
		t.Errorf("Unmarshal = %v, want success", r)
	}

	if err := json.Unmarshal([]byte(`{"FAILURE":"nope"}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r != Failure("nope") {
		t.Errorf("Unmarshal = %v, want failure", r)
	}

	for _, body := range []string{`{}`, `{"Arnie Quote":"a","FAILURE":"b"}`} {
		if err := json.Unmarshal([]byte(body), &r); !errors.Is(err, ErrAmbiguousResult) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrAmbiguousResult", body, err)
		}
	}

	if err := json.Unmarshal([]byte(`[1]`), &r); err == nil {
		t.Error("Expected error for non-object result")
	}
}

func TestBatchCounts(t *testing.T) {
	b := Batch{Success("a"), Failure("b"), Success("c"), Failure("d"), Failure("e")}

	if got := b.Successes(); got != 2 {
		t.Errorf("Successes() = %d, want 2", got)
	}
	if got := b.Failures(); got != 3 {
		t.Errorf("Failures() = %d, want 3", got)
	}

	var empty Batch
	if empty.Successes() != 0 || empty.Failures() != 0 {
		t.Error("Empty batch should have zero counts")
	}
}
