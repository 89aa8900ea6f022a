package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ariel-frischer/gitchangelog/internal/changelog"
	clierrors "github.com/ariel-frischer/gitchangelog/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var parseCmd = &cobra.Command{
	Use:   "parse [message]",
	Short: "Show how a commit message is parsed and classified",
	Long: `Parse a commit message and print its header, body, footer and
classification as YAML. The message is read from stdin when no argument is
given, so 'git log -1 --format=%B | gitchangelog parse' checks the last commit.`,
	Example: `  gitchangelog parse 'feat(cli): add watch command'
  git log -1 --format=%B | gitchangelog parse`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := readMessage(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		c := changelog.NewCommit("", time.Time{}, message)
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(newParsedMessage(c)); err != nil {
			return fmt.Errorf("encoding parsed message: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	parseCmd.GroupID = GroupChangelog
	rootCmd.AddCommand(parseCmd)
}

// parsedMessage is the YAML view of a parsed commit message.
type parsedMessage struct {
	Header      string   `yaml:"header"`
	Body        any      `yaml:"body,omitempty"`
	Footer      []string `yaml:"footer,omitempty"`
	Categorized bool     `yaml:"categorized"`
	Category    string   `yaml:"category,omitempty"`
	Scope       string   `yaml:"scope,omitempty"`
	Summary     string   `yaml:"summary,omitempty"`
}

func newParsedMessage(c *changelog.Commit) parsedMessage {
	p := parsedMessage{
		Header:      c.Header,
		Footer:      c.Footer,
		Categorized: c.IsCategorized(),
		Category:    c.Category,
		Scope:       c.Scope,
		Summary:     c.Summary,
	}
	switch {
	case c.Body == nil:
	case c.Body.IsLines():
		p.Body = c.Body.Lines
	default:
		p.Body = c.Body.Text
	}
	return p
}

// readMessage returns the message argument, or all of stdin.
func readMessage(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading message from stdin: %w", err)
	}
	// git log adds a trailing newline that is not part of the message.
	message := strings.TrimRight(string(data), "\n")
	if message == "" {
		return "", clierrors.NewArgumentErrorWithUsage(
			"no commit message given",
			"gitchangelog parse <message>",
			"Pass the message as an argument or pipe it on stdin",
		)
	}
	return message, nil
}
