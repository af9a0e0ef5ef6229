package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/modclash/internal/config"
	"github.com/danieljhkim/modclash/internal/engine"
	"github.com/danieljhkim/modclash/internal/fsops"
)

var (
	checkManifest    string
	checkIgnoreExt   []string
	checkIgnore      []string
	checkWorkers     int
	checkGroupLabel  string
	checkMemberLabel string
)

var checkCmd = &cobra.Command{
	Use:   "check [name=]dir...",
	Short: "Check directories for files installed by more than one group",
	Long: `Check scans every directory and reports each relative file path that appears
under more than one of them.

Each argument is a group root, optionally named with name=dir. Without a name
the group is named by the directory argument as given. Groups listed in a
--manifest file are checked first, followed by the arguments.

Ignored extensions are case-insensitive and given without the leading dot.
Ignore patterns are globs matched against slash-separated relative paths.

Exits with status 1 when conflicts are found.`,
	Example: `  modclash check mods/ModA mods/ModB
  modclash check A=mods/ModA B=mods/ModB --ignore-ext bak,txt
  modclash check --manifest profile.toml --ignore 'docs/**'
  modclash check --json mods/*`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkManifest, "manifest", "m", "", "TOML manifest listing groups")
	checkCmd.Flags().StringSliceVar(&checkIgnoreExt, "ignore-ext", nil, "File extensions to ignore (repeatable, comma-separated)")
	checkCmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "Glob patterns of relative paths to ignore")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Concurrent directory scans (0 = one per CPU)")
	checkCmd.Flags().StringVar(&checkGroupLabel, "group-label", "", "Name for groups in the report")
	checkCmd.Flags().StringVar(&checkMemberLabel, "member-label", "", "Name for members in the report")
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, _, err := loadSettings()
	if err != nil {
		return err
	}

	var manifest *config.Manifest
	if checkManifest != "" {
		manifest, err = config.LoadManifest(fsops.NewRealFS(), checkManifest)
		if err != nil {
			return err
		}
	}

	req, err := buildCheckRequest(cmd, settings, manifest, args)
	if err != nil {
		return err
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	result, err := eng.Detect(cmd.Context(), req)
	return renderResult(cmd, result, err)
}

// buildCheckRequest merges settings, the manifest and flags, in increasing
// precedence. Ignore lists are unioned across all three.
func buildCheckRequest(cmd *cobra.Command, settings *config.Settings, manifest *config.Manifest, args []string) (*engine.DetectRequest, error) {
	req := &engine.DetectRequest{
		Workers:          settings.Workers,
		IgnoreExtensions: append([]string(nil), settings.IgnoreExtensions...),
		IgnorePatterns:   append([]string(nil), settings.IgnorePatterns...),
	}

	var manifestGroupLabel, manifestMemberLabel string
	if manifest != nil {
		for _, g := range manifest.Groups {
			req.Groups = append(req.Groups, engine.GroupRoot{Name: g.Name, Root: g.Root})
		}
		req.IgnoreExtensions = append(req.IgnoreExtensions, manifest.IgnoreExtensions...)
		req.IgnorePatterns = append(req.IgnorePatterns, manifest.IgnorePatterns...)
		manifestGroupLabel = manifest.GroupLabel
		manifestMemberLabel = manifest.MemberLabel
	}

	for _, arg := range args {
		g, err := parseGroupArg(arg)
		if err != nil {
			return nil, err
		}
		req.Groups = append(req.Groups, g)
	}
	if len(req.Groups) == 0 {
		return nil, fmt.Errorf("%w: give at least one directory or --manifest", engine.ErrValidation)
	}

	req.IgnoreExtensions = append(req.IgnoreExtensions, checkIgnoreExt...)
	req.IgnorePatterns = append(req.IgnorePatterns, checkIgnore...)
	if cmd.Flags().Changed("workers") {
		req.Workers = checkWorkers
	}

	req.GroupLabel = firstNonEmpty(checkGroupLabel, manifestGroupLabel, settings.GroupLabel)
	req.MemberLabel = firstNonEmpty(checkMemberLabel, manifestMemberLabel, settings.MemberLabel)
	return req, nil
}

// parseGroupArg splits a name=dir argument. Without '=' the name is the
// argument itself. A leading '=' is treated as part of the path.
func parseGroupArg(arg string) (engine.GroupRoot, error) {
	if arg == "" {
		return engine.GroupRoot{}, fmt.Errorf("%w: empty directory argument", engine.ErrValidation)
	}
	name, root, found := strings.Cut(arg, "=")
	if !found || name == "" {
		return engine.GroupRoot{Name: arg, Root: arg}, nil
	}
	if root == "" {
		return engine.GroupRoot{}, fmt.Errorf("%w: group %q has no directory", engine.ErrValidation, name)
	}
	return engine.GroupRoot{Name: name, Root: root}, nil
}
