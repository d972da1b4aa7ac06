package logger

import "testing"

func TestNewLevels(t *testing.T) {
	log, err := New("debug", "development")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Error("debug should be enabled")
	}

	log, err = New("not-a-level", "production")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("unknown level should fall back to info")
	}
}
