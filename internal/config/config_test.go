package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolatedOptions points every file layer at an empty temp directory.
func isolatedOptions(t *testing.T) LoadOptions {
	t.Helper()
	dir := t.TempDir()
	return LoadOptions{
		Dir:            dir,
		UserConfigPath: filepath.Join(dir, "no-user-config.yml"),
		WarningWriter:  &bytes.Buffer{},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadWithOptions(isolatedOptions(t))
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Format)
	assert.Equal(t, []string{"feat", "fix"}, cfg.Groups)
	assert.Equal(t, "source", cfg.Order)
	assert.Equal(t, "committer", cfg.DateSource)
	assert.Equal(t, "Changelog", cfg.Title)
	assert.False(t, cfg.Unreleased)
	assert.Zero(t, cfg.Workers)
	assert.Equal(t, SourceDefault, cfg.Sources["format"])
}

func TestLoadWithOptions_Layers(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	userPath := filepath.Join(t.TempDir(), "config.yml")
	opts.UserConfigPath = userPath

	writeFile(t, userPath, "format: rst\ntitle: Mine\nworkers: 2\n")
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.yml"), `
format: yaml
unreleased: true
releases_url: https://github.com/org/repo/releases/{}
groups: [feat, fix, perf]
headings:
  perf: Speed
`)
	writeFile(t, filepath.Join(opts.Dir, ".env"), "GITCHANGELOG_ORDER=newest\nUNRELATED=1\n")

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format, "project overrides user")
	assert.Equal(t, "Mine", cfg.Title, "user overrides default")
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Unreleased)
	assert.Equal(t, []string{"feat", "fix", "perf"}, cfg.Groups)
	assert.Equal(t, map[string]string{"perf": "Speed"}, cfg.Headings)
	assert.Equal(t, "newest", cfg.Order, ".env overrides project")

	assert.Equal(t, SourceProject, cfg.Sources["format"])
	assert.Equal(t, SourceUser, cfg.Sources["title"])
	assert.Equal(t, SourceProject, cfg.Sources["headings"])
	assert.Equal(t, SourceDotEnv, cfg.Sources["order"])
	assert.Equal(t, SourceDefault, cfg.Sources["date_source"])
}

func TestLoadWithOptions_SkipDotEnv(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	opts.SkipDotEnv = true
	writeFile(t, filepath.Join(opts.Dir, ".env"), "GITCHANGELOG_ORDER=newest\n")

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "source", cfg.Order)
}

func TestLoadWithOptions_Environment(t *testing.T) {
	// t.Setenv: not parallel.
	opts := isolatedOptions(t)
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.yml"), "format: rst\n")
	writeFile(t, filepath.Join(opts.Dir, ".env"), "GITCHANGELOG_FORMAT=yaml\n")

	t.Setenv("GITCHANGELOG_FORMAT", "terminal")
	t.Setenv("GITCHANGELOG_GROUPS", "feat, docs")
	t.Setenv("GITCHANGELOG_UNRELEASED", "true")
	t.Setenv("GITCHANGELOG_HEADINGS__DOCS", "Docs")

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)

	assert.Equal(t, "terminal", cfg.Format, "env overrides .env and project")
	assert.Equal(t, []string{"feat", "docs"}, cfg.Groups)
	assert.True(t, cfg.Unreleased)
	assert.Equal(t, "Docs", cfg.Headings["docs"])
	assert.Equal(t, SourceEnv, cfg.Sources["format"])
}

func TestLoadWithOptions_JSONProjectConfig(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.json"), `{"format": "rst", "unreleased": true}`)

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "rst", cfg.Format)
	assert.True(t, cfg.Unreleased)
}

func TestLoadWithOptions_YAMLWinsOverJSON(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	var warnings bytes.Buffer
	opts.WarningWriter = &warnings
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.yml"), "format: yaml\n")
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.json"), `{"format": "rst"}`)

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Contains(t, warnings.String(), "JSON config found")

	warnings.Reset()
	opts.SkipWarnings = true
	_, err = LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Empty(t, warnings.String())
}

func TestLoadWithOptions_CustomProjectPath(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	opts.ProjectConfigPath = filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, opts.ProjectConfigPath, "order: oldest\n")

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "oldest", cfg.Order)
}

func TestLoadWithOptions_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content   string
		wantField string
		wantLine  int
	}{
		"bad format":         {content: "format: html\n", wantField: "format"},
		"bad order":          {content: "order: random\n", wantField: "order"},
		"bad date source":    {content: "date_source: tagger\n", wantField: "date_source"},
		"negative workers":   {content: "workers: -1\n", wantField: "workers"},
		"url without marker": {content: "releases_url: https://example.com/releases\n", wantField: "releases_url"},
		"empty group":        {content: "groups: [feat, \"\"]\n", wantField: "groups[1]"},
		"broken yaml syntax": {content: "format: [markdown\n", wantLine: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts := isolatedOptions(t)
			writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.yml"), tt.content)

			_, err := LoadWithOptions(opts)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, verr.Field)
			}
			if tt.wantLine != 0 {
				assert.Positive(t, verr.Line)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  string
	}{
		"simple":     {input: "GITCHANGELOG_FORMAT", want: "format"},
		"underscore": {input: "GITCHANGELOG_RELEASES_URL", want: "releases_url"},
		"nested":     {input: "GITCHANGELOG_HEADINGS__FEAT", want: "headings.feat"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, envTransform(tt.input))
		})
	}
}

func TestLoadWithOptions_GroupsFlattenedAfterValidation(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	writeFile(t, filepath.Join(opts.Dir, ".gitchangelog.yml"), "groups: [\"feat, fix\", docs]\n")

	cfg, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"feat", "fix", "docs"}, cfg.Groups)
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"feat", "fix", "docs"}, SplitList([]string{"feat, fix", " docs "}))
	assert.Equal(t, []string{}, SplitList([]string{"", " , "}))
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	t.Parallel()

	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(GetDefaultConfigTemplate()), &parsed))

	for key := range KnownKeys {
		assert.Contains(t, parsed, key, "template documents %s", key)
	}
	for key, value := range GetDefaults() {
		if list, ok := value.([]string); ok {
			got := make([]string, 0)
			for _, item := range parsed[key].([]interface{}) {
				got = append(got, item.(string))
			}
			assert.Equal(t, list, got, key)
			continue
		}
		assert.EqualValues(t, value, parsed[key], key)
	}
}

func TestKnownKeys_CoverDefaults(t *testing.T) {
	t.Parallel()

	for key := range GetDefaults() {
		_, err := GetKeySchema(key)
		assert.NoError(t, err, key)
	}
	assert.Equal(t, "date_source", SortedKeys()[0])

	_, err := GetKeySchema("nope")
	assert.Equal(t, ErrUnknownKey{Key: "nope"}, err)
}

func TestValidateValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key     string
		value   string
		want    interface{}
		wantErr bool
	}{
		"enum ok":      {key: "order", value: "newest", want: "newest"},
		"enum bad":     {key: "order", value: "sideways", wantErr: true},
		"bool":         {key: "unreleased", value: "TRUE", want: true},
		"bool bad":     {key: "fetch", value: "yes", wantErr: true},
		"int":          {key: "workers", value: "8", want: 8},
		"int bad":      {key: "workers", value: "many", wantErr: true},
		"list":         {key: "groups", value: "feat,perf", want: []string{"feat", "perf"}},
		"string":       {key: "title", value: "Notes", want: "Notes"},
		"map rejected": {key: "headings", value: "x", wantErr: true},
		"unknown key":  {key: "colour", value: "red", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateValue(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Parsed)
		})
	}
}
