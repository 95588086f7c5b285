// Package cli wires the doplug commands onto cobra: flag parsing, output
// format resolution, topic help and the mapping from run results to
// process exit codes.
package cli

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/doplug/internal/version"
	"github.com/arthur-debert/doplug/pkg/cobrax/topics"
	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/arthur-debert/doplug/pkg/ui"
)

//go:embed docs
var docsFS embed.FS

// exitError carries a specific exit code out of a RunE. The message (if
// any) has already been rendered by the command; Main only maps the code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(status types.RunStatus, err error) error {
	return &exitError{code: status.ExitCode(), err: err}
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "doplug",
		Short: "A declarative package manager for editor plugins",
		Long: `doplug installs, pins and repairs editor plugins from a declarative
manifest. You describe the set of plugins you want, each pinned to an
exact revision; doplug makes the machine match the manifest and records
what it did in a lock file.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().String("format", "",
		"Output format: auto, term, text or json")
	rootCmd.PersistentFlags().Bool("no-color", false,
		"Disable colored output")

	// the topics help command replaces cobra's
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGenconfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if docs, err := fs.Sub(docsFS, "docs"); err == nil {
		_ = topics.Initialize(rootCmd, docs, topics.Options{
			Renderer: topicRenderer(),
		})
	}

	return rootCmd
}

// Main runs the CLI and returns the process exit code: 0 success,
// 1 configuration error, 2 partial failure, 3 fatal.
func Main() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return types.StatusSuccess.ExitCode()
	}

	var ee *exitError
	if stderrors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.IsValidation(err) {
		return types.StatusConfigError.ExitCode()
	}
	return types.StatusFatal.ExitCode()
}

func topicRenderer() topics.Renderer {
	if ui.DetectFormat(os.Stdout) == ui.FormatTerminal {
		return topics.NewGlamourRenderer()
	}
	return &topics.PlainRenderer{}
}
