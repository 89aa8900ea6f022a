package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/gitchangelog/internal/config"
	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configInitUser  bool
	configInitForce bool
	configDryRun    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gitchangelog configuration",
	Long: `Manage gitchangelog configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (GITCHANGELOG_*, nested keys use __)
  2. .env file in the current directory
  3. Project config (.gitchangelog.yml, or legacy .gitchangelog.json)
  4. User config (<user config dir>/gitchangelog/config.yml)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration and where each value came from
  gitchangelog config show

  # List every key with its type and default
  gitchangelog config keys

  # Create .gitchangelog.yml with commented defaults
  gitchangelog config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return clierrors.ConfigParseError(cfgFile, err)
		}
		return showConfig(cmd.OutOrStdout(), c)
	},
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List configuration keys",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConfigKeys(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with commented defaults",
	Long: `Write .gitchangelog.yml (or the user config with --user) containing every
key with its default value. Existing files are kept unless --force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if cfgFile != "" {
			path = cfgFile
		}
		if configInitUser {
			userPath, err := config.UserConfigPath()
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Configuration, "locating user config directory")
			}
			path = userPath
		}

		if err := config.WriteDefaultConfig(path, configInitForce); err != nil {
			if errors.Is(err, config.ErrConfigExists) {
				return clierrors.NewConfigError(
					fmt.Sprintf("%s already exists", path),
					"Overwrite it with: gitchangelog config init --force",
					"Inspect the effective configuration with: gitchangelog config show",
				)
			}
			return clierrors.Wrap(err, clierrors.Configuration)
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

var configMigrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Convert .gitchangelog.json to .gitchangelog.yml",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if cfgFile != "" {
			dir = filepath.Dir(cfgFile)
		}

		result, err := config.MigrateProjectConfig(dir, configDryRun)
		if err != nil {
			return clierrors.Wrap(err, clierrors.Configuration)
		}
		cmd.Println(result.Message)

		if result.Success && !result.DryRun {
			if err := config.RemoveLegacyConfig(result.SourcePath, false); err != nil {
				return err
			}
			cmd.Printf("Backed up %s to %s.bak\n", result.SourcePath, result.SourcePath)
		}
		return nil
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "write the user config instead of the project config")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configMigrateCmd.Flags().BoolVar(&configDryRun, "dry-run", false, "report what would change without writing")

	configCmd.AddCommand(configShowCmd, configKeysCmd, configInitCmd, configMigrateCmd)
	rootCmd.AddCommand(configCmd)
}

// showConfig prints each key, its value and the layer that set it.
func showConfig(w io.Writer, c *config.Configuration) error {
	values := map[string]any{
		"repo_path":    c.RepoPath,
		"ref":          c.Ref,
		"format":       c.Format,
		"output":       c.Output,
		"groups":       c.Groups,
		"unreleased":   c.Unreleased,
		"releases_url": c.ReleasesURL,
		"issues_url":   c.IssuesURL,
		"order":        c.Order,
		"date_source":  c.DateSource,
		"workers":      c.Workers,
		"fetch":        c.Fetch,
		"title":        c.Title,
		"headings":     c.Headings,
	}

	for _, key := range config.SortedKeys() {
		value, err := yaml.Marshal(map[string]any{key: values[key]})
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		source := c.Sources[key]
		if source == "" {
			source = config.SourceDefault
		}
		text := strings.TrimRight(string(value), "\n")
		if strings.Contains(text, "\n") {
			_, err = fmt.Fprintf(w, "# from %s\n%s\n", source, text)
		} else {
			_, err = fmt.Fprintf(w, "%s  # from %s\n", text, source)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// listConfigKeys prints every known key with its type, default and description.
func listConfigKeys(w io.Writer) error {
	width := 0
	for _, key := range config.SortedKeys() {
		width = max(width, len(key))
	}

	for _, key := range config.SortedKeys() {
		schema := config.KnownKeys[key]
		typ := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typ = strings.Join(schema.AllowedValues, "|")
		}
		if _, err := fmt.Fprintf(w, "%-*s  %-28s  default: %v\n%-*s  %s\n",
			width, key, typ, formatDefault(schema.Default), width, "", schema.Description); err != nil {
			return err
		}
	}
	return nil
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case string:
		if d == "" {
			return `""`
		}
		return d
	case []string:
		return "[" + strings.Join(d, ", ") + "]"
	case map[string]string:
		if len(d) == 0 {
			return "{}"
		}
	}
	return fmt.Sprint(v)
}
