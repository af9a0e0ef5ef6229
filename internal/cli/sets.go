package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/modclash/internal/config"
)

var (
	setsGroupLabel  string
	setsMemberLabel string
)

var setsCmd = &cobra.Command{
	Use:   "sets FILE|-",
	Short: "Check named string sets for shared members",
	Long: `Sets reads a YAML or JSON document of named sets and reports every member
that belongs to more than one set. The filesystem is not scanned.

Use - to read the document from standard input.

  group_label: Teams
  member_label: Owners
  groups:
    - name: core
      members: [alice, bob]
    - name: infra
      members: [bob, carol]

Exits with status 1 when shared members are found.`,
	Example: `  modclash sets owners.yaml
  cat owners.json | modclash sets - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSets,
}

func init() {
	setsCmd.Flags().StringVar(&setsGroupLabel, "group-label", "", "Name for groups in the report")
	setsCmd.Flags().StringVar(&setsMemberLabel, "member-label", "", "Name for members in the report")
}

func runSets(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	doc, err := config.ParseSets(data)
	if err != nil {
		if args[0] != "-" {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return err
	}

	settings, _, err := loadSettings()
	if err != nil {
		return err
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	result, err := eng.DetectSets(
		firstNonEmpty(setsGroupLabel, doc.GroupLabel, settings.GroupLabel),
		firstNonEmpty(setsMemberLabel, doc.MemberLabel, settings.MemberLabel),
		doc.Groups,
	)
	return renderResult(cmd, result, err)
}

// readInput reads a file, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
