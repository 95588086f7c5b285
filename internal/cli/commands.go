package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/doplug/internal/version"
	"github.com/arthur-debert/doplug/pkg/commands/clean"
	"github.com/arthur-debert/doplug/pkg/commands/initialize"
	"github.com/arthur-debert/doplug/pkg/commands/list"
	"github.com/arthur-debert/doplug/pkg/commands/status"
	"github.com/arthur-debert/doplug/pkg/commands/sync"
	"github.com/arthur-debert/doplug/pkg/commands/update"
	"github.com/arthur-debert/doplug/pkg/config"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/git"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/style"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/arthur-debert/doplug/pkg/ui"
)

// env bundles the real collaborators every command runs against.
type env struct {
	fs    types.FS
	vcs   types.VCS
	paths paths.Paths
	cfg   *config.Settings
}

// newEnv loads configuration and builds the production filesystem and git
// collaborators. Paths are rebuilt when the config relocates the plugins
// dir, manifest or lock file.
func newEnv() (*env, error) {
	p := paths.New()
	cfg, err := config.Load(p.ConfigDir())
	if err != nil {
		return nil, err
	}
	var popts []paths.Option
	if cfg.PluginsDir != "" {
		popts = append(popts, paths.WithPluginsDir(cfg.PluginsDir))
	}
	if cfg.Manifest != "" {
		popts = append(popts, paths.WithManifestPath(cfg.Manifest))
	}
	if cfg.LockFile != "" {
		popts = append(popts, paths.WithLockPath(cfg.LockFile))
	}
	if len(popts) > 0 {
		p = paths.New(popts...)
	}

	log.Debug().
		Str("manifest", p.ManifestPath()).
		Str("plugins_dir", p.PluginsDir()).
		Msg("Environment ready")

	return &env{
		fs: filesystem.NewOS(),
		vcs: git.New(
			git.WithBinary(cfg.Git.Binary),
			git.WithTimeout(cfg.GitTimeout()),
		),
		paths: p,
		cfg:   cfg,
	}, nil
}

// outputFormat resolves the effective format: flag beats config file beats
// terminal detection.
func outputFormat(cmd *cobra.Command, cfg *config.Settings) (ui.Format, error) {
	name, _ := cmd.Root().PersistentFlags().GetString("format")
	if name == "" {
		name = cfg.Output.Format
	}
	f, err := ui.ParseFormat(name)
	if err != nil {
		return ui.FormatText, err
	}

	noColor, _ := cmd.Root().PersistentFlags().GetBool("no-color")
	return ui.Resolve(f, os.Stdout, noColor || cfg.Output.NoColor), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Make installed plugins match the manifest",
		Long: `Sync reconciles every plugin declared in the manifest: missing plugins
are cloned, wrong revisions are checked out, corrupt installs are wiped
and re-cloned, and converged plugins are left untouched. The result is
recorded in the lock file.

A plugin that fails does not stop the run; the remaining plugins are
still processed and the failure is reported in the summary.`,
		Args: cobra.NoArgs,
		Example: `  # Reconcile everything
  doplug sync

  # Preview without touching anything
  doplug sync --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd, e.cfg)
			if err != nil {
				return err
			}

			result, err := sync.Execute(cmd.Context(), sync.Options{
				FS:     e.fs,
				VCS:    e.vcs,
				Paths:  e.paths,
				DryRun: dryRun,
			})
			if err != nil {
				if result != nil && result.Status == types.StatusFatal {
					return exitWith(types.StatusFatal, err)
				}
				return err
			}

			if dryRun {
				renderPlan(result.Planned, format)
				return nil
			}

			renderOutcomes(result.Outcomes, result.Summary, format)
			if result.Status == types.StatusPartialFailure {
				return exitWith(result.Status,
					fmt.Errorf("%d of %d plugins failed",
						result.Summary.Failed, result.Summary.Total()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report planned actions without executing them")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [plugins...]",
		Short: "Fetch new history, then sync",
		Long: `Update fetches the latest history for installed plugins and then runs a
full reconciliation. Use it after repinning a plugin to a revision newer
than its last clone; plain sync never fetches.

With no arguments every installed plugin is fetched. Naming plugins
restricts the fetch, but reconciliation always covers the whole declared
set.`,
		Example: `  # Fetch everything and reconcile
  doplug update

  # Only fetch telescope's history
  doplug update telescope`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd, e.cfg)
			if err != nil {
				return err
			}

			result, err := update.Execute(cmd.Context(), update.Options{
				FS:    e.fs,
				VCS:   e.vcs,
				Paths: e.paths,
				Names: args,
			})
			if err != nil {
				if result != nil && result.Status == types.StatusFatal {
					return exitWith(types.StatusFatal, err)
				}
				return err
			}

			for name, ferr := range result.FetchFailures {
				fmt.Fprintf(os.Stderr, "Warning: fetch failed for %s: %v\n", name, ferr)
			}

			renderOutcomes(result.Outcomes, result.Summary, format)
			if result.Status == types.StatusPartialFailure {
				return exitWith(result.Status,
					fmt.Errorf("%d of %d plugins failed",
						result.Summary.Failed, result.Summary.Total()))
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report the state of every declared plugin",
		Long: `Status classifies every declared plugin against its pinned revision with
the same detection sync uses, and changes nothing: no clone, no
checkout, no lock file write. With --fix a non-converged result is
followed by a sync.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd, e.cfg)
			if err != nil {
				return err
			}

			result, err := status.Execute(cmd.Context(), status.Options{
				FS:    e.fs,
				VCS:   e.vcs,
				Paths: e.paths,
			})
			if err != nil {
				return err
			}

			if format == ui.FormatJSON {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				rows := make([]style.ListRow, 0, len(result.Rows))
				for _, r := range result.Rows {
					rows = append(rows, style.ListRow{
						Name:      r.Name,
						Revision:  r.Revision,
						State:     r.StateStr,
						Installed: r.State != types.StateAbsent,
					})
				}
				fmt.Println(style.RenderList(rows, format == ui.FormatTerminal))
				if result.Converged {
					fmt.Println("\nAll plugins converged.")
				} else if !fix {
					fmt.Println("\nNot converged; run 'doplug sync'.")
				}
			}

			if result.Converged || !fix {
				return nil
			}

			fmt.Println()
			syncResult, err := sync.Execute(cmd.Context(), sync.Options{
				FS:    e.fs,
				VCS:   e.vcs,
				Paths: e.paths,
			})
			if err != nil {
				if syncResult != nil && syncResult.Status == types.StatusFatal {
					return exitWith(types.StatusFatal, err)
				}
				return err
			}
			renderOutcomes(syncResult.Outcomes, syncResult.Summary, format)
			if syncResult.Status == types.StatusPartialFailure {
				return exitWith(syncResult.Status,
					fmt.Errorf("%d of %d plugins failed",
						syncResult.Summary.Failed, syncResult.Summary.Total()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false,
		"Run a sync when the report shows drift")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared plugins",
		Long:  `List shows the manifest's declared plugins in declaration order with their pinned revision and on-disk state.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd, e.cfg)
			if err != nil {
				return err
			}

			result, err := list.Execute(cmd.Context(), list.Options{
				FS:    e.fs,
				VCS:   e.vcs,
				Paths: e.paths,
			})
			if err != nil {
				return err
			}

			if format == ui.FormatJSON {
				return printJSON(result)
			}

			rows := make([]style.ListRow, 0, len(result.Rows))
			for _, r := range result.Rows {
				rows = append(rows, style.ListRow{
					Name:      r.Name,
					Revision:  r.Revision,
					State:     r.State,
					Installed: r.Installed,
				})
			}
			fmt.Println(style.RenderList(rows, format == ui.FormatTerminal))
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove plugins no longer in the manifest",
		Long: `Clean deletes installed plugins that the manifest no longer declares and
drops their lock file records. Directories doplug did not create are
left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			result, err := clean.Execute(clean.Options{
				FS:     e.fs,
				Paths:  e.paths,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if len(result.Pruned) == 0 && len(result.Failures) == 0 {
				fmt.Println("Nothing to clean.")
				return nil
			}
			for _, name := range result.Pruned {
				if dryRun {
					fmt.Printf("  would remove %s\n", name)
				} else {
					fmt.Printf("  removed %s\n", name)
				}
			}
			for name, ferr := range result.Failures {
				fmt.Fprintf(os.Stderr, "Error: could not remove %s: %v\n", name, ferr)
			}
			if len(result.Failures) > 0 {
				return exitWith(types.StatusPartialFailure,
					fmt.Errorf("%d plugins could not be removed", len(result.Failures)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report what would be removed without deleting anything")
	return cmd
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter manifest",
		Long: `Init writes a starter manifest with a couple of example plugins so you
have something concrete to edit. An existing manifest is not overwritten
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}

			result, err := initialize.Execute(initialize.Options{
				FS:    e.fs,
				Paths: e.paths,
				Force: force,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", result.ManifestPath)
			fmt.Println("Edit it, then run 'doplug sync'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing manifest")
	return cmd
}

func newGenconfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: "Print the default configuration file",
		Long: `Genconfig prints a fully commented configuration file with every setting
at its default. Redirect it to get a starting point:

  doplug genconfig > ~/.config/doplug/doplug.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("doplug version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
