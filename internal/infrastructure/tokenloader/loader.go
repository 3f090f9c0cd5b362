package tokenloader

import (
	"fmt"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"wallet_dashboard/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenFile is the wrapped form of a token list file: {"tokens": [...]}.
type tokenFile struct {
	Tokens []entity.TokenDescriptor `json:"tokens"`
}

// TokenFileLoader loads token descriptors from a JSON file, falling back to the
// descriptors given inline in the YAML configuration.
type TokenFileLoader struct {
	filePath   string
	inline     []entity.TokenDescriptor
	loggerInfo func(msg string, args ...any)
	loggerWarn func(msg string, args ...any)
}

// NewTokenLoader creates a new TokenFileLoader. filePath may be empty.
func NewTokenLoader(filePath string, inline []entity.TokenDescriptor, loggerInfo, loggerWarn func(msg string, args ...any)) *TokenFileLoader {
	return &TokenFileLoader{
		filePath:   filePath,
		inline:     inline,
		loggerInfo: loggerInfo,
		loggerWarn: loggerWarn,
	}
}

// LoadTokens returns the configured descriptors in file order. Inline descriptors are
// appended after the file's, skipping contract addresses already listed.
// Addresses are not validated here: a malformed address surfaces as a per-token failure.
func (l *TokenFileLoader) LoadTokens() ([]entity.TokenDescriptor, error) {
	var tokens []entity.TokenDescriptor

	if l.filePath != "" {
		fromFile, err := l.readFile()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fromFile...)
		if l.loggerInfo != nil {
			l.loggerInfo("Tokens loaded from file", "path", l.filePath, "count", len(fromFile))
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[strings.ToLower(t.ContractAddress)] = struct{}{}
	}
	for _, t := range l.inline {
		key := strings.ToLower(t.ContractAddress)
		if _, dup := seen[key]; dup {
			if l.loggerWarn != nil {
				l.loggerWarn("Duplicate token in inline configuration, skipping", "address", t.ContractAddress, "name", t.DisplayName)
			}
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, t)
	}

	if len(tokens) == 0 && l.loggerWarn != nil {
		l.loggerWarn("No tokens configured; token balance fetches will return an empty list")
	}
	return tokens, nil
}

func (l *TokenFileLoader) readFile() ([]entity.TokenDescriptor, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", l.filePath, err)
	}

	var wrapped tokenFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Tokens != nil {
		return normalize(wrapped.Tokens), nil
	}

	var direct []entity.TokenDescriptor
	if err := json.Unmarshal(data, &direct); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token file %s: %w", l.filePath, err)
	}
	return normalize(direct), nil
}

func normalize(tokens []entity.TokenDescriptor) []entity.TokenDescriptor {
	out := make([]entity.TokenDescriptor, 0, len(tokens))
	for _, t := range tokens {
		t.ContractAddress = strings.TrimSpace(t.ContractAddress)
		t.DisplayName = strings.TrimSpace(t.DisplayName)
		out = append(out, t)
	}
	return out
}
