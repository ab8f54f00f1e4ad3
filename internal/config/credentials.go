package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
)

// KeyFileName is the persisted API key file, kept in the data directory.
const KeyFileName = "gemini.key"

// minKeyLength is a syntactic sanity bound; anything shorter is a paste
// accident, not a credential.
const minKeyLength = 30

var keyCharset = regexp.MustCompile(`[^a-zA-Z0-9\-\._]`)

// ErrNoAPIKey is returned when every resolution source came up empty.
var ErrNoAPIKey = errors.New("config: no API key available")

// PromptFunc asks the user for a key interactively. Injectable so resolution
// is testable without a terminal.
type PromptFunc func() (string, error)

// ValidateKey applies the syntactic checks a plausible key must pass.
func ValidateKey(key string) bool {
	return len(strings.TrimSpace(key)) >= minKeyLength
}

// CleanKey strips characters that cannot appear in a key (newlines, shell
// quoting debris from a paste).
func CleanKey(raw string) string {
	return strings.TrimSpace(keyCharset.ReplaceAllString(raw, ""))
}

// ResolveAPIKey decides the credential once per run with a fixed precedence:
// explicit argument > GEMINI_API_KEY environment > persisted key file >
// interactive prompt. A key accepted from the prompt is persisted for the
// next run. The key is never logged.
func ResolveAPIKey(dataDir, explicit string, prompt PromptFunc) (string, error) {
	if key := CleanKey(explicit); ValidateKey(key) {
		return key, nil
	}

	if key := CleanKey(os.Getenv("GEMINI_API_KEY")); ValidateKey(key) {
		return key, nil
	}

	keyPath := filepath.Join(dataDir, KeyFileName)
	if data, err := os.ReadFile(keyPath); err == nil {
		if key := CleanKey(string(data)); ValidateKey(key) {
			return key, nil
		}
		logger.Info("Persisted API key failed validation, ignoring it")
	}

	if prompt == nil {
		return "", ErrNoAPIKey
	}

	raw, err := prompt()
	if err != nil {
		return "", err
	}
	key := CleanKey(raw)
	if !ValidateKey(key) {
		return "", ErrNoAPIKey
	}

	if err := os.WriteFile(keyPath, []byte(key), 0600); err != nil {
		logger.Error("Could not persist API key: %v", err)
	}
	return key, nil
}

// ResetAPIKey removes the persisted key so the next resolution falls through
// to the prompt.
func ResetAPIKey(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, KeyFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
