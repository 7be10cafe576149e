package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Loading
// ============================================================================

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	require.NoError(t, m.Load())

	cfg := m.GetConfig()
	assert.Equal(t, DefaultExcerptWindow, cfg.ExcerptWindow)
	assert.Equal(t, DefaultLineSearchWindow, cfg.LineSearchWindow)
	assert.Equal(t, DefaultCheckerStrategy, cfg.CheckerStrategy)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadInvalidJSONUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Load())

	assert.Equal(t, DefaultExcerptWindow, m.GetConfig().ExcerptWindow)
}

func TestLoadValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"rules_file": "/etc/spd/rules.yaml", "excerpt_window": 20, "checker_strategy": "collect_all"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Load())

	cfg := m.GetConfig()
	assert.Equal(t, "/etc/spd/rules.yaml", cfg.RulesFile)
	assert.Equal(t, 20, cfg.ExcerptWindow)
	assert.Equal(t, "collect_all", cfg.CheckerStrategy)
	// unset fields still get defaults
	assert.Equal(t, DefaultLineSearchWindow, cfg.LineSearchWindow)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())
	m.GetConfig().ExcerptWindow = 25

	require.NoError(t, m.Save())

	m2, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m2.Load())
	assert.Equal(t, 25, m2.GetConfig().ExcerptWindow)
}

// ============================================================================
// Environment fallbacks
// ============================================================================

func TestGetRulesFilePrecedence(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.NoError(t, m.Load())

	t.Setenv(EnvRulesFile, "/env/rules.yaml")
	assert.Equal(t, "/env/rules.yaml", m.GetRulesFile())

	m.GetConfig().RulesFile = "/cfg/rules.yaml"
	assert.Equal(t, "/cfg/rules.yaml", m.GetRulesFile())
}

func TestFileHints(t *testing.T) {
	t.Setenv(EnvMarkdownFile, "")
	t.Setenv(EnvTexFile, "")
	assert.Equal(t, "not_specified.md", MarkdownHint())
	assert.Equal(t, "not_specified.tex", TexHint())

	t.Setenv(EnvMarkdownFile, "paper.md")
	t.Setenv(EnvTexFile, "paper.tex")
	assert.Equal(t, "paper.md", MarkdownHint())
	assert.Equal(t, "paper.tex", TexHint())
}
