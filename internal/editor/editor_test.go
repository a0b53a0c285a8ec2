package editor

import (
	"errors"
	"testing"
)

func TestResolve_ConfiguredWins(t *testing.T) {
	t.Setenv("EDITOR", "sh")
	got, err := Resolve("sh")
	if err != nil || got != "sh" {
		t.Errorf("Resolve = %q, %v", got, err)
	}
}

func TestResolve_FallsBackToEnv(t *testing.T) {
	t.Setenv("EDITOR", "sh")
	got, err := Resolve("definitely-not-a-real-editor-xyz")
	if err != nil || got != "sh" {
		t.Errorf("Resolve = %q, %v", got, err)
	}
}

func TestResolve_NoEditor(t *testing.T) {
	t.Setenv("EDITOR", "also-not-a-real-editor-xyz")
	t.Setenv("PATH", t.TempDir())
	_, err := Resolve("")
	if !errors.Is(err, ErrNoEditor) {
		t.Errorf("err = %v, want ErrNoEditor", err)
	}
}

func TestEdit_RoundTripWithNoopEditor(t *testing.T) {
	// `true` exits without touching the file, so the content survives
	// the round trip unchanged.
	got, err := Edit("true", "# Day: 2025-10-12\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Day: 2025-10-12\n" {
		t.Errorf("content = %q", got)
	}
}
