// Package configpath resolves which configuration file a command reads.
package configpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "chatwidget.toml"

// ResolveConfigPath returns flagValue when set. Otherwise it returns
// ./chatwidget.toml or ~/.chatwidget/chatwidget.toml, whichever exists first,
// and "" when neither does.
func ResolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		if _, err := os.Stat(flagValue); err != nil {
			return "", fmt.Errorf("config file %s: %w", flagValue, err)
		}
		return flagValue, nil
	}

	candidates := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".chatwidget", FileName))
	}

	for _, candidate := range candidates {
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", candidate, err)
		}
	}

	return "", nil
}
