/*
Package config manages TOML config for termserve.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/termin"
	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "termserve"

// Config holds the entire config structure
type Config struct {
	Match  MatchConfig  `toml:"match"`
	Dict   DictConfig   `toml:"dict"`
	Server ServerConfig `toml:"server"`
}

// MatchConfig holds the default matching options for every request.
type MatchConfig struct {
	// Similarity below 0.05 or at 1 and above means exact matching.
	Similarity       float64 `toml:"similarity"`
	IgnoreBrackets   bool    `toml:"ignore_brackets"`
	IgnoreStopWords  bool    `toml:"ignore_stop_words"`
	FullWordsOnly    bool    `toml:"full_words_only"`
	InDictionaryOnly bool    `toml:"in_dictionary_only"`
	MaxMatches       int     `toml:"max_matches"`
}

// DictConfig holds dictionary source options.
type DictConfig struct {
	// Paths are doublestar globs of pattern dictionaries.
	Paths    []string `toml:"paths"`
	Lexicon  string   `toml:"lexicon"`
	Snapshot string   `toml:"snapshot"`
	Watch    bool     `toml:"watch"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxTextLen       int     `toml:"max_text_len"`
	SuggestLimit     int     `toml:"suggest_limit"`
	SuggestThreshold float64 `toml:"suggest_threshold"`
}

// Attrs converts the match flags to parse attributes.
func (m MatchConfig) Attrs() termin.ParseAttr {
	attrs := termin.NoAttrs
	if m.IgnoreBrackets {
		attrs |= termin.IgnoreBrackets
	}
	if m.IgnoreStopWords {
		attrs |= termin.IgnoreStopWords
	}
	if m.FullWordsOnly {
		attrs |= termin.FullWordsOnly
	}
	if m.InDictionaryOnly {
		attrs |= termin.InDictionaryOnly
	}
	return attrs
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", AppName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/termserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Match: MatchConfig{
			Similarity: 0,
			MaxMatches: 64,
		},
		Dict: DictConfig{
			Paths: []string{"dict/**/*.toml", "dict/**/*.txt"},
		},
		Server: ServerConfig{
			MaxTextLen:       4096,
			SuggestLimit:     10,
			SuggestThreshold: 0.85,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		config.resolvePaths(configDir)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Relative dictionary paths are resolved
// against the config file's directory.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	config.resolvePaths(filepath.Dir(configPath))
	return config, nil
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Dict.Paths {
		c.Dict.Paths[i] = abs(p)
	}
	c.Dict.Lexicon = abs(c.Dict.Lexicon)
	c.Dict.Snapshot = abs(c.Dict.Snapshot)
}

// tryPartialParse keeps every well-typed value of a file that does not
// decode into Config as a whole.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "match"); ok {
		extractMatchConfig(section, &config.Match)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	return config, nil
}

func extractMatchConfig(data map[string]any, match *MatchConfig) {
	if val, ok := utils.ExtractFloat(data, "similarity"); ok {
		match.Similarity = val
	}
	if val, ok := utils.ExtractBool(data, "ignore_brackets"); ok {
		match.IgnoreBrackets = val
	}
	if val, ok := utils.ExtractBool(data, "ignore_stop_words"); ok {
		match.IgnoreStopWords = val
	}
	if val, ok := utils.ExtractBool(data, "full_words_only"); ok {
		match.FullWordsOnly = val
	}
	if val, ok := utils.ExtractBool(data, "in_dictionary_only"); ok {
		match.InDictionaryOnly = val
	}
	if val, ok := utils.ExtractInt64(data, "max_matches"); ok {
		match.MaxMatches = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractStrings(data, "paths"); ok {
		dict.Paths = val
	}
	if val, ok := utils.ExtractString(data, "lexicon"); ok {
		dict.Lexicon = val
	}
	if val, ok := utils.ExtractString(data, "snapshot"); ok {
		dict.Snapshot = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		dict.Watch = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_text_len"); ok {
		server.MaxTextLen = val
	}
	if val, ok := utils.ExtractInt64(data, "suggest_limit"); ok {
		server.SuggestLimit = val
	}
	if val, ok := utils.ExtractFloat(data, "suggest_threshold"); ok {
		server.SuggestThreshold = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
