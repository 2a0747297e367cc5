package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source  string `yaml:"source"`
	Section string `yaml:"section"`

	Output      string `yaml:"output"`
	PageWorkers int    `yaml:"page_workers"`
	KeepFolders bool   `yaml:"keep_folders"`
	SkipBroken  bool   `yaml:"skip_broken"`
	Debug       bool   `yaml:"debug"`

	Bypass     bool   `yaml:"bypass"`
	UserAgent  string `yaml:"user_agent"`
	ProfileDir string `yaml:"profile_dir"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Source       string
	Section      string
	Output       string
	PageWorkers  int
	KeepFolders  bool
	SkipBroken   bool
	Bypass       bool
	UserAgent    string
	ProfileDir   string
}

func DefaultConfig() *Config {
	return &Config{
		Source:      "",
		Section:     "popular",
		Output:      ".",
		PageWorkers: 5,
		KeepFolders: false,
		SkipBroken:  false,
		Debug:       false,
		Bypass:      false,
		UserAgent:   "",
		ProfileDir:  "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangasrc config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Source != "" {
		c.Source = o.Source
	}
	if o.Section != "" {
		c.Section = o.Section
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.PageWorkers != 0 {
		c.PageWorkers = o.PageWorkers
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.Bypass {
		c.Bypass = true
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.ProfileDir != "" {
		c.ProfileDir = o.ProfileDir
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.PageWorkers == 0 {
		c.PageWorkers = 5
	}
	if c.Section == "" {
		c.Section = "popular"
	}
	if c.ProfileDir == "" {
		c.ProfileDir = ProfilesDir()
	}
}

func (c *Config) Print() {
	if c.Source != "" {
		fmt.Printf(" -source: %s\n", c.Source)
	}
	fmt.Printf(" -section: %s\n", c.Section)
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -page_workers: %d\n", c.PageWorkers)
	if c.KeepFolders {
		fmt.Printf(" -keep_folders: %t\n", c.KeepFolders)
	}
	if c.SkipBroken {
		fmt.Printf(" -skip_broken: %t\n", c.SkipBroken)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.Bypass {
		fmt.Printf(" -bypass: %t\n", c.Bypass)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.ProfileDir != "" {
		fmt.Printf(" -profile_dir: %s\n", c.ProfileDir)
	}
}
