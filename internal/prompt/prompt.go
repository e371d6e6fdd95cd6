// Package prompt holds the instruction text sent with every image.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed analysis_prompt.md
var defaultPrompt string

// Default returns the built-in extraction prompt.
func Default() string {
	return defaultPrompt
}

// Load returns the prompt stored at path, or the built-in one when path is empty.
func Load(path string) (string, error) {
	if path == "" {
		return defaultPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return text, nil
}
