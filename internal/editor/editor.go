// Package editor opens day documents in the user's editor and returns
// the edited text.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNoEditor is returned when no usable editor command can be found.
var ErrNoEditor = errors.New("editor: no editor found")

// Resolve picks the editor command to run. Priority: the configured
// command, then $EDITOR, then vi, then nano. Candidates that are not on
// PATH are skipped.
func Resolve(configured string) (string, error) {
	for _, cand := range []string{configured, os.Getenv("EDITOR"), "vi", "nano"} {
		if cand == "" {
			continue
		}
		if _, err := exec.LookPath(cand); err == nil {
			return cand, nil
		}
	}
	return "", ErrNoEditor
}

// Edit writes content to a temporary .md file, runs the editor attached
// to the terminal, and returns the file's content after the editor
// exits.
func Edit(editorCmd, content string) (string, error) {
	f, err := os.CreateTemp("", "dagaz-*.md")
	if err != nil {
		return "", fmt.Errorf("editor: create temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("editor: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("editor: close temp file: %w", err)
	}

	cmd := exec.Command(editorCmd, name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor: run %s: %w", editorCmd, err)
	}

	edited, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("editor: read back temp file: %w", err)
	}
	return string(edited), nil
}
