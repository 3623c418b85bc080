/*
Package config manages the TOML config of wordmux.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/wordmux/internal/utils"
	"github.com/bastiangx/wordmux/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Suggest SuggestConfig `toml:"suggest"`
	Dict    DictConfig    `toml:"dict"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// SuggestConfig mirrors the preference snapshot handed to the provider.
type SuggestConfig struct {
	QuickFixes    bool   `toml:"quick_fixes"`
	Contacts      bool   `toml:"contacts"`
	MinWordUsage  int    `toml:"min_word_usage"`
	NextWordMode  string `toml:"next_word_mode"`
	MaxNextWords  int    `toml:"max_next_words"`
	AutoThreshold int    `toml:"auto_threshold"`
	Incognito     bool   `toml:"incognito"`
}

// DictConfig holds where the word sources live.
type DictConfig struct {
	PacksDir     string   `toml:"packs_dir"`
	Languages    []string `toml:"languages"`
	MaxWords     int      `toml:"max_words"`
	StorePath    string   `toml:"store_path"`
	ContactsFile string   `toml:"contacts_file"`
	LoadWorkers  int      `toml:"load_workers"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit     int  `toml:"max_limit"`
	MinPrefix    int  `toml:"min_prefix"`
	MaxPrefix    int  `toml:"max_prefix"`
	EnableFilter bool `toml:"enable_filter"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultNoFilter bool `toml:"default_no_filter"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordmux
// 2. ~/Library/Application Support/wordmux (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordmux")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordmux")
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
// 2. Default path: [UserConfigDir]/wordmux/config.toml
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
	s := suggest.DefaultSettings()
	return &Config{
		Suggest: SuggestConfig{
			QuickFixes:    s.QuickFixesEnabled,
			Contacts:      s.ContactsEnabled,
			MinWordUsage:  s.MinWordUsage,
			NextWordMode:  s.NextWordMode.String(),
			MaxNextWords:  s.MaxNextWordCount,
			AutoThreshold: s.AutoDictionaryThreshold,
		},
		Dict: DictConfig{
			PacksDir:    "data",
			Languages:   []string{"en"},
			MaxWords:    50000,
			LoadWorkers: 4,
		},
		Server: ServerConfig{
			MaxLimit:     64,
			MinPrefix:    1,
			MaxPrefix:    60,
			EnableFilter: true,
		},
		CLI: CliConfig{
			DefaultLimit:    24,
			DefaultNoFilter: false,
		},
	}
}

// Settings converts the [suggest] section into the provider's snapshot.
// An unknown next word mode falls back to words only.
func (c *Config) Settings() suggest.Settings {
	mode, err := suggest.ParseNextWordMode(c.Suggest.NextWordMode)
	if err != nil {
		log.Warnf("%v, using %s", err, mode)
	}
	return suggest.Settings{
		QuickFixesEnabled:       c.Suggest.QuickFixes,
		ContactsEnabled:         c.Suggest.Contacts,
		MinWordUsage:            c.Suggest.MinWordUsage,
		NextWordMode:            mode,
		MaxNextWordCount:        c.Suggest.MaxNextWords,
		AutoDictionaryThreshold: c.Suggest.AutoThreshold,
	}
}

// ResolvePath returns p relative to the config file's directory when it is
// not absolute. Empty p resolves to name inside that directory.
func ResolvePath(configPath, p, name string) string {
	base := "."
	if configPath != "" {
		base = filepath.Dir(configPath)
	}
	if p == "" {
		return filepath.Join(base, name)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
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
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
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

	if section, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		extractSuggestConfig(section, &config.Suggest)
	}
	if section, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractSuggestConfig(data map[string]any, s *SuggestConfig) {
	if val, ok := utils.ExtractBool(data, "quick_fixes"); ok {
		s.QuickFixes = val
	}
	if val, ok := utils.ExtractBool(data, "contacts"); ok {
		s.Contacts = val
	}
	if val, ok := utils.ExtractInt64(data, "min_word_usage"); ok {
		s.MinWordUsage = val
	}
	if val, ok := utils.ExtractString(data, "next_word_mode"); ok {
		s.NextWordMode = val
	}
	if val, ok := utils.ExtractInt64(data, "max_next_words"); ok {
		s.MaxNextWords = val
	}
	if val, ok := utils.ExtractInt64(data, "auto_threshold"); ok {
		s.AutoThreshold = val
	}
	if val, ok := utils.ExtractBool(data, "incognito"); ok {
		s.Incognito = val
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "packs_dir"); ok {
		dict.PacksDir = val
	}
	if val, ok := utils.ExtractStringSlice(data, "languages"); ok {
		dict.Languages = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractString(data, "store_path"); ok {
		dict.StorePath = val
	}
	if val, ok := utils.ExtractString(data, "contacts_file"); ok {
		dict.ContactsFile = val
	}
	if val, ok := utils.ExtractInt64(data, "load_workers"); ok {
		dict.LoadWorkers = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_prefix"); ok {
		server.MaxPrefix = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
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

// SuggestUpdate carries optional changes to the [suggest] section.
type SuggestUpdate struct {
	QuickFixes    *bool
	Contacts      *bool
	MinWordUsage  *int
	NextWordMode  *string
	MaxNextWords  *int
	AutoThreshold *int
	Incognito     *bool
}

// Update changes the given [suggest] values and saves to configPath when it
// is not empty.
func (c *Config) Update(configPath string, u SuggestUpdate) error {
	if u.NextWordMode != nil {
		if _, err := suggest.ParseNextWordMode(*u.NextWordMode); err != nil {
			return err
		}
	}
	s := &c.Suggest
	if u.QuickFixes != nil {
		s.QuickFixes = *u.QuickFixes
	}
	if u.Contacts != nil {
		s.Contacts = *u.Contacts
	}
	if u.MinWordUsage != nil {
		s.MinWordUsage = *u.MinWordUsage
	}
	if u.NextWordMode != nil {
		s.NextWordMode = *u.NextWordMode
	}
	if u.MaxNextWords != nil {
		s.MaxNextWords = *u.MaxNextWords
	}
	if u.AutoThreshold != nil {
		s.AutoThreshold = *u.AutoThreshold
	}
	if u.Incognito != nil {
		s.Incognito = *u.Incognito
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
