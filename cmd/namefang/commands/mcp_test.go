package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/namefang/internal/config"
)

func TestMCPCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := NewMCPCommand()

	assert.Equal(t, "mcp", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("dict"))
	assert.NotNil(t, cmd.Flags().Lookup("metrics-addr"))
	assert.NotNil(t, cmd.Flags().Lookup("debug"))
}

func TestMCPDictionaryProvider(t *testing.T) {
	t.Parallel()

	mc := &MCPCommand{}

	provider, err := mc.dictionaryProvider(&config.Config{})
	require.NoError(t, err)

	entry, ok := provider.Lookup("usr")
	require.True(t, ok)
	assert.Equal(t, "user", entry.Canonical)
}

func TestMCPDictionaryProviderMissingFile(t *testing.T) {
	t.Parallel()

	mc := &MCPCommand{dictPath: filepath.Join(t.TempDir(), "missing.csv")}

	_, err := mc.dictionaryProvider(&config.Config{})
	require.Error(t, err)
}
