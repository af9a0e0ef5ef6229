package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/modclash/internal/config"
	"github.com/danieljhkim/modclash/internal/conflict"
	"github.com/danieljhkim/modclash/internal/engine"
	"github.com/danieljhkim/modclash/internal/fsops"
)

// newEngine creates an engine on the real filesystem with the flag-selected logger.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	logger, err := GetBaseLogger(cmd)
	if err != nil {
		return nil, err
	}
	return engine.New(fsops.NewRealFS(), logger), nil
}

// loadSettings loads user settings from --config or the default location.
func loadSettings() (*config.Settings, string, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get config paths: %w", err)
	}
	return config.Load(paths, configFile)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints a detection result and passes detectErr through, so
// the command still fails when conflicts were found.
func renderResult(cmd *cobra.Command, result *engine.DetectResult, detectErr error) error {
	if result == nil {
		return detectErr
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := outputJSON(w, result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return detectErr
	}

	for _, g := range result.Groups {
		if len(g.Skipped) > 0 {
			PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s: skipped %s", g.Name, PrintCount(len(g.Skipped), "unreadable entry", "unreadable entries")))
		}
	}

	var cerr *conflict.ConflictError
	if errors.As(detectErr, &cerr) {
		PrintSection(w, "Conflicts Detected")
		rows := make([][]string, 0, len(cerr.Entries))
		for _, entry := range cerr.Entries {
			rows = append(rows, []string{entry.Member, strings.Join(entry.Groups, ", ")})
		}
		PrintTable(w, []string{cerr.MemberLabel, cerr.GroupLabel}, rows)
		fmt.Fprintln(w)
		PrintError(w, fmt.Sprintf("%s shared between %s",
			PrintCount(cerr.Len(), "member", "members"),
			PrintCount(len(cerr.Groups()), "group", "groups")))
		return detectErr
	}
	if detectErr != nil {
		return detectErr
	}

	rows := make([][]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		rows = append(rows, []string{g.Name, strconv.Itoa(g.Members), strconv.Itoa(g.Ignored), strconv.Itoa(len(g.Skipped))})
	}
	PrintTable(w, []string{result.GroupLabel, result.MemberLabel, "Ignored", "Skipped"}, rows)
	PrintSuccess(w, fmt.Sprintf("No %s conflicts across %d %s", result.MemberLabel, len(result.Groups), result.GroupLabel))
	return nil
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
