package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir - каталог Docker Secrets. Переменная, чтобы тесты могли подменить путь.
var SecretsDir = "/run/secrets"

// ReadSecret читает секрет из файла Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		// Без fallback на env var
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadOptionalSecret возвращает пустую строку, если файла секрета нет.
func ReadOptionalSecret(secretName string) (string, error) {
	secret, err := ReadSecret(secretName)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return secret, err
}
