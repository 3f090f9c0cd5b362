package tokenloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_dashboard/internal/domain/entity"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTokensDirectArrayKeepsOrder(t *testing.T) {
	path := writeFile(t, `[
		{"contractAddress": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "displayName": "USDC"},
		{"contractAddress": " 0x6b175474e89094c44da98b954eedeac495271d0f ", "displayName": "DAI"}
	]`)

	tokens, err := NewTokenLoader(path, nil, nil, nil).LoadTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "USDC", tokens[0].DisplayName)
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", tokens[1].ContractAddress)
}

func TestLoadTokensWrappedObject(t *testing.T) {
	path := writeFile(t, `{"tokens": [{"contractAddress": "0x1", "displayName": "ONE"}]}`)

	tokens, err := NewTokenLoader(path, nil, nil, nil).LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, []entity.TokenDescriptor{{ContractAddress: "0x1", DisplayName: "ONE"}}, tokens)
}

func TestLoadTokensMergesInlineWithoutDuplicates(t *testing.T) {
	path := writeFile(t, `[{"contractAddress": "0xAA", "displayName": "A"}]`)
	inline := []entity.TokenDescriptor{
		{ContractAddress: "0xaa", DisplayName: "A-again"},
		{ContractAddress: "0xBB", DisplayName: "B"},
	}

	var warnings int
	loader := NewTokenLoader(path, inline, nil, func(string, ...any) { warnings++ })
	tokens, err := loader.LoadTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "A", tokens[0].DisplayName)
	assert.Equal(t, "B", tokens[1].DisplayName)
	assert.Equal(t, 1, warnings)
}

func TestLoadTokensInlineOnly(t *testing.T) {
	inline := []entity.TokenDescriptor{{ContractAddress: "0xBB", DisplayName: "B"}}
	tokens, err := NewTokenLoader("", inline, nil, nil).LoadTokens()
	require.NoError(t, err)
	assert.Equal(t, inline, tokens)
}

func TestLoadTokensBadFile(t *testing.T) {
	_, err := NewTokenLoader(writeFile(t, `not json`), nil, nil, nil).LoadTokens()
	assert.Error(t, err)

	_, err = NewTokenLoader(filepath.Join(t.TempDir(), "missing.json"), nil, nil, nil).LoadTokens()
	assert.Error(t, err)
}
