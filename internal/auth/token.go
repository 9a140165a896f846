package auth

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadToken reads the access token file. A missing file is reported through
// the returned os error so callers can tell it apart from a read failure.
func LoadToken(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken overwrites the token file with the raw token, nothing else.
func SaveToken(filePath, token string) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, []byte(token), 0600)
}
