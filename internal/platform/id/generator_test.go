package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

type fixedGenerator string

func (g fixedGenerator) NewID() (string, error) { return string(g), nil }

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	first, err := NewUUIDGenerator().NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
	second, _ := NewUUIDGenerator().NewID()
	if first == second {
		t.Fatalf("expected unique ids")
	}
}

func TestHolder(t *testing.T) {
	t.Parallel()

	holder, err := Holder(fixedGenerator("run-1"))
	if err != nil {
		t.Fatalf("Holder: %v", err)
	}
	if !strings.HasSuffix(holder, "/run-1") || strings.HasPrefix(holder, "/") {
		t.Fatalf("unexpected holder %q", holder)
	}
}
