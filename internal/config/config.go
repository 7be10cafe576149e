// Package config provides configuration management for the pandoc-debugger
// tool. Configuration lives in a JSON file under the user's config
// directory; missing files and invalid JSON fall back to defaults so that
// the diagnostic pipeline can always run.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pandoc-debugger/internal/logger"
	"pandoc-debugger/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "pandoc-debugger-config.json"
	// EnvRulesFile is the environment variable naming the suggestion rules file
	EnvRulesFile = "SPD_RULES_FILE"
	// EnvMarkdownFile is the environment variable naming the Markdown source
	// passed through as a user-facing hint
	EnvMarkdownFile = "MDFILE"
	// EnvTexFile is the environment variable naming the TeX source passed
	// through as a user-facing hint
	EnvTexFile = "TEXFILE"

	// DefaultExcerptWindow is the maximum number of context lines collected
	// after a "! " anchor line
	DefaultExcerptWindow = 15
	// DefaultLineSearchWindow is the number of context lines searched for an
	// "l.<digits>" source-line marker
	DefaultLineSearchWindow = 10
	// DefaultCheckerStrategy is the aggregation strategy of the structural
	// checkers
	DefaultCheckerStrategy = "first_match"
)

// Config holds the tunable settings of the diagnostic engine.
type Config struct {
	RulesFile        string `json:"rules_file"`
	ExcerptWindow    int    `json:"excerpt_window"`
	LineSearchWindow int    `json:"line_search_window"`
	CheckerStrategy  string `json:"checker_strategy"` // "first_match" or "collect_all"
	LogFilePath      string `json:"log_file_path"`
	LogLevel         string `json:"log_level"`
}

// Manager loads, saves, and answers questions about the configuration.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a Manager for the given config path. An empty path
// selects the default location in the user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "pandoc-debugger", DefaultConfigFileName)
	}

	logger.Debug("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *Config {
	return &Config{
		ExcerptWindow:    DefaultExcerptWindow,
		LineSearchWindow: DefaultLineSearchWindow,
		CheckerStrategy:  DefaultCheckerStrategy,
		LogLevel:         "info",
	}
}

// Load reads the config file. A missing file or invalid JSON falls back to
// defaults; only a filesystem error other than not-exist is reported.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		cfg := &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			m.config = cfg
		}
	}

	// Apply defaults for zero-valued fields
	if m.config.ExcerptWindow <= 0 {
		m.config.ExcerptWindow = DefaultExcerptWindow
	}
	if m.config.LineSearchWindow <= 0 {
		m.config.LineSearchWindow = DefaultLineSearchWindow
	}
	if m.config.CheckerStrategy == "" {
		m.config.CheckerStrategy = DefaultCheckerStrategy
	}
	if m.config.LogLevel == "" {
		m.config.LogLevel = "info"
	}

	return nil
}

// Save writes the current configuration to the config file.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	return nil
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetRulesFile returns the suggestion rules file path. The config value
// wins; the SPD_RULES_FILE environment variable is the fallback.
func (m *Manager) GetRulesFile() string {
	if m.config != nil && m.config.RulesFile != "" {
		return m.config.RulesFile
	}
	return os.Getenv(EnvRulesFile)
}

// MarkdownHint returns the Markdown file hint passed through to leads.
// The value is environment-provided and deliberately not validated here.
func MarkdownHint() string {
	if v := os.Getenv(EnvMarkdownFile); v != "" {
		return v
	}
	return "not_specified.md"
}

// TexHint returns the TeX file hint passed through to leads.
func TexHint() string {
	if v := os.Getenv(EnvTexFile); v != "" {
		return v
	}
	return "not_specified.tex"
}
