// Package config provides hierarchical configuration management for gitchangelog using koanf.
// Configuration is loaded with priority: environment variables > .env file > project config
// (.gitchangelog.yml or .gitchangelog.json) > user config (~/.config/gitchangelog/config.yml)
// > defaults.
package config

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "GITCHANGELOG_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceDotEnv  ConfigSource = "dotenv"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the gitchangelog configuration
type Configuration struct {
	// RepoPath is any path inside the repository to read. Empty means the working directory.
	RepoPath string `koanf:"repo_path"`
	// Ref is the revision history is walked from. Empty means HEAD.
	Ref string `koanf:"ref"`
	// Format is the output format: markdown, rst, yaml or terminal.
	Format string `koanf:"format" validate:"oneof=markdown md rst yaml terminal"`
	// Output is the file the changelog is written to. Empty means stdout.
	Output string `koanf:"output"`

	// Groups lists the categories to render; "*" renders all of them.
	Groups []string `koanf:"groups" validate:"dive,required"`
	// Unreleased adds a section for commits after the latest tag.
	Unreleased bool `koanf:"unreleased"`
	// ReleasesURL links release headings; "{}" is replaced by the tag name.
	ReleasesURL string `koanf:"releases_url" validate:"omitempty,contains={}"`
	// IssuesURL is accepted for compatibility and currently unused.
	IssuesURL string `koanf:"issues_url"`

	Order      string `koanf:"order" validate:"oneof=source newest oldest"`
	DateSource string `koanf:"date_source" validate:"oneof=committer author"`
	Workers    int    `koanf:"workers" validate:"min=0,max=256"`
	Fetch      bool   `koanf:"fetch"`

	Title string `koanf:"title"`
	// Headings overrides category titles, e.g. {feat: "Features"}.
	Headings map[string]string `koanf:"headings"`

	// Sources maps each set key to the layer that provided its final value.
	Sources map[string]ConfigSource `koanf:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .gitchangelog.yml in Dir)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: UserConfigPath())
	UserConfigPath string
	// Dir is the directory searched for project config and .env (default: current directory)
	Dir string
	// WarningWriter receives warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses warnings
	SkipWarnings bool
	// SkipDotEnv disables .env loading
	SkipDotEnv bool
}

// Load loads configuration from user, project, .env and environment sources.
// Priority: Environment variables > .env > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)
	warningWriter := getWarningWriter(opts.WarningWriter)

	layers := []struct {
		source ConfigSource
		load   func(*koanf.Koanf) error
	}{
		{SourceDefault, loadDefaults},
		{SourceUser, func(l *koanf.Koanf) error { return loadUserConfig(l, opts.UserConfigPath) }},
		{SourceProject, func(l *koanf.Koanf) error {
			return loadProjectConfig(l, opts, warningWriter)
		}},
		{SourceDotEnv, func(l *koanf.Koanf) error {
			if opts.SkipDotEnv {
				return nil
			}
			return loadDotEnv(l, filepath.Join(opts.Dir, ".env"))
		}},
		{SourceEnv, loadEnvironmentConfig},
	}

	for _, layer := range layers {
		lk := koanf.New(".")
		if err := layer.load(lk); err != nil {
			return nil, err
		}
		for _, key := range lk.Keys() {
			sources[topLevelKey(key)] = layer.source
		}
		if err := k.Merge(lk); err != nil {
			return nil, fmt.Errorf("merging %s config: %w", layer.source, err)
		}
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	return cfg, nil
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) error {
	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("setting default %s: %w", key, err)
		}
	}
	return nil
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config. YAML is preferred over JSON;
// a warning is written if both exist.
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions, warningWriter io.Writer) error {
	yamlPath := filepath.Join(opts.Dir, ProjectConfigPath())
	if opts.ProjectConfigPath != "" {
		yamlPath = opts.ProjectConfigPath
	}
	jsonPath := filepath.Join(opts.Dir, ProjectJSONConfigPath())

	yamlExists := fileExists(yamlPath)
	jsonExists := fileExists(jsonPath)

	switch {
	case yamlExists:
		if err := loadYAMLConfig(k, yamlPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		if jsonExists && !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: JSON config found at %s (ignored, using %s)\n", jsonPath, yamlPath)
			fmt.Fprintf(warningWriter, "  Run 'gitchangelog config migrate' to convert it to YAML.\n\n")
		}
	case jsonExists:
		if err := k.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return fmt.Errorf("failed to load project config %s: %w", jsonPath, err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadDotEnv reads GITCHANGELOG_ variables from a .env file without touching
// the process environment.
func loadDotEnv(k *koanf.Koanf, path string) error {
	if !fileExists(path) {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if err := k.Set(envTransform(name), vars[name]); err != nil {
			return fmt.Errorf("setting %s from %s: %w", name, path, err)
		}
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Entries are checked before flattening so an empty list item is reported.
	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	cfg.Groups = SplitList(cfg.Groups)

	cfg.RepoPath = expandHomePath(cfg.RepoPath)
	cfg.Output = expandHomePath(cfg.Output)

	return &cfg, nil
}

// SplitList flattens comma-separated entries, as produced by environment
// variables like GITCHANGELOG_GROUPS=feat,fix, and trims whitespace.
func SplitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// A double underscore separates nested keys.
// Example: GITCHANGELOG_RELEASES_URL -> releases_url,
// GITCHANGELOG_HEADINGS__FEAT -> headings.feat
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// topLevelKey returns the first segment of a dotted key.
func topLevelKey(key string) string {
	top, _, _ := strings.Cut(key, ".")
	return top
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
