package tokenizer

import (
	"errors"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountDocumentText(t *testing.T) {
	tokens, err := CountDocument(testCounter{}, "hello")
	if err != nil {
		t.Fatalf("CountDocument error: %v", err)
	}
	if tokens != len([]rune("hello")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("hello")), tokens)
	}
}

func TestCountDocumentRejectsInvalidInput(t *testing.T) {
	if _, err := CountDocument(nil, "hello"); !errors.Is(err, errNilCounter) {
		t.Fatalf("expected nil counter error, got %v", err)
	}
	if _, err := CountDocument(testCounter{}, string([]byte{0xff, 0xfe})); !errors.Is(err, errInvalidUTF8) {
		t.Fatalf("expected invalid UTF-8 error, got %v", err)
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if model != DefaultModel && model != defaultEncodingName {
		t.Fatalf("expected model %s or the %s fallback, got %q", DefaultModel, defaultEncodingName, model)
	}
	tokens, err := CountDocument(counter, `{"project_name": "demo"}`)
	if err != nil {
		t.Fatalf("CountDocument error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}

func TestNewCounterUnknownModelFallsBack(t *testing.T) {
	counter, model, err := NewCounter(Config{Model: "not-a-model"})
	if err != nil {
		t.Fatalf("NewCounter error: %v", err)
	}
	if model != defaultEncodingName || counter.Name() != defaultEncodingName {
		t.Fatalf("expected fallback encoding, got model %q counter %q", model, counter.Name())
	}
}
