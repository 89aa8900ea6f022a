package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# gitchangelog configuration
# See 'gitchangelog config -h' for commands, 'gitchangelog config keys' for all options

# Repository settings
repo_path: ""                         # Path inside the repository (empty = current directory)
ref: ""                               # Revision to walk from (empty = HEAD)
fetch: false                          # Fetch tags from all remotes before generating
date_source: committer                # Commit timestamp used for ordering: committer | author

# Output settings
format: markdown                      # markdown | rst | yaml | terminal
output: ""                            # Output file (empty = stdout)
title: Changelog                      # Document title
order: source                         # Release order: source | newest | oldest

# Content settings
groups:                               # Categories to include ("*" = all)
  - feat
  - fix
unreleased: false                     # Include commits after the latest tag
releases_url: ""                      # Release link template, e.g. https://github.com/org/repo/releases/{}
issues_url: ""                        # Reserved

# Category heading overrides
headings: {}
  # feat: Features
  # fix: Fixes

# Performance
workers: 0                            # Parallel message parsers (0 = number of CPUs)
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"repo_path": "",
		"ref":       "",
		"fetch":     false,
		// date_source: tags are dated by their target's committer
		// date, so commits are ordered by committer date too.
		"date_source": "committer",
		"format":      "markdown",
		"output":      "",
		"title":       "Changelog",
		"order":       "source",
		// groups: only features and fixes are user-facing by default.
		"groups":       []string{"feat", "fix"},
		"unreleased":   false,
		"releases_url": "",
		"issues_url":   "",
		"workers":      0,
	}
}
