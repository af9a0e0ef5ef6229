package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/modclash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings",
	Long: `Config prints the settings check and sets start from, after the settings file
and MODCLASH_* environment overrides are applied.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

type configOutput struct {
	Path     string           `json:"path"`
	Settings *config.Settings `json:"settings"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	settings, path, err := loadSettings()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return outputJSON(w, configOutput{Path: path, Settings: settings})
	}

	if path == "" {
		path = "(none, using defaults)"
	}
	workers := strconv.Itoa(settings.Workers)
	if settings.Workers == 0 {
		workers = "0 (one per CPU)"
	}

	PrintSection(w, "Settings")
	PrintLabelValue(w, "File", path)
	PrintLabelValue(w, "Workers", workers)
	PrintLabelValue(w, "Ignore extensions", joinOrNone(settings.IgnoreExtensions))
	PrintLabelValue(w, "Ignore patterns", joinOrNone(settings.IgnorePatterns))
	PrintLabelValue(w, "Group label", settings.GroupLabel)
	PrintLabelValue(w, "Member label", settings.MemberLabel)
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
