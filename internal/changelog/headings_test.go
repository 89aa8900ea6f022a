package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadings_Title(t *testing.T) {
	t.Parallel()

	h := DefaultHeadings()

	tests := map[string]struct {
		category string
		want     string
	}{
		"build":            {category: "build", want: "Build System Changes"},
		"chore":            {category: "chore", want: "Chores"},
		"ci":               {category: "ci", want: "Change related to CI"},
		"docs":             {category: "docs", want: "Changes to Documentation"},
		"feat":             {category: "feat", want: "New Features"},
		"fix":              {category: "fix", want: "Bug Fixes"},
		"perf":             {category: "perf", want: "Performance Enhancements"},
		"refactor":         {category: "refactor", want: "Code Refactor"},
		"style":            {category: "style", want: "Code Style Changes"},
		"test":             {category: "test", want: "Testing Changes"},
		"unknown token":    {category: "security", want: "Security"},
		"lookup is exact":  {category: "Feat", want: "Feat"},
		"upper is lowered": {category: "REVERT", want: "Revert"},
		"underscore word":  {category: "foo_bar", want: "Foo_Bar"},
		"digit word":       {category: "v2fix", want: "V2Fix"},
		"mixed case words": {category: "sEC_hOTFIX", want: "Sec_Hotfix"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, h.Title(tt.category))
		})
	}
}

func TestDefaultHeadings_FreshCopy(t *testing.T) {
	t.Parallel()

	a := DefaultHeadings()
	a["feat"] = "Features"
	assert.Equal(t, "New Features", DefaultHeadings().Title("feat"))
}

func TestHeadings_With(t *testing.T) {
	t.Parallel()

	base := DefaultHeadings()
	merged := base.With(map[string]string{"feat": "Added", "deps": "Dependencies"})

	assert.Equal(t, "Added", merged.Title("feat"))
	assert.Equal(t, "Dependencies", merged.Title("deps"))
	assert.Equal(t, "Bug Fixes", merged.Title("fix"))
	assert.Equal(t, "New Features", base.Title("feat"), "base is not modified")
}
