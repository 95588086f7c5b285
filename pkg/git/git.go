// Package git implements the types.VCS interface by shelling out to the
// git binary. Every argument derived from user input passes the shell-safety
// check before it reaches an argv, and every operation runs under a timeout.
package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/validate"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single git operation. Clones of plugin-sized
// repositories finish well inside this; anything longer is stuck.
const DefaultTimeout = 5 * time.Minute

// Git runs the git binary. It satisfies types.VCS.
type Git struct {
	binary  string
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures a Git instance.
type Option func(*Git)

// WithBinary overrides the git executable path.
func WithBinary(path string) Option {
	return func(g *Git) {
		if path != "" {
			g.binary = path
		}
	}
}

// WithTimeout overrides the per-operation timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Git) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New creates a git-backed VCS.
func New(opts ...Option) *Git {
	g := &Git{
		binary:  "git",
		timeout: DefaultTimeout,
		logger:  logging.GetLogger("git"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clone clones source into path. The -- separator keeps a hostile source
// from being parsed as a flag even if validation were bypassed.
func (g *Git) Clone(ctx context.Context, source, path string) error {
	if err := checkArgs(source, path); err != nil {
		return err
	}
	_, err := g.run(ctx, "", errors.ErrGitClone,
		"clone", "--quiet", "--", source, path)
	return err
}

// Checkout detaches the work tree at path onto revision. It never fetches:
// the revision must already be reachable locally.
func (g *Git) Checkout(ctx context.Context, path, revision string) error {
	if err := checkArgs(path, revision); err != nil {
		return err
	}
	_, err := g.run(ctx, path, errors.ErrGitCheckout,
		"checkout", "--quiet", "--detach", revision)
	return err
}

// CurrentRevision reports the commit the work tree at path is on.
func (g *Git) CurrentRevision(ctx context.Context, path string) (string, error) {
	if err := checkArgs(path); err != nil {
		return "", err
	}
	out, err := g.run(ctx, path, errors.ErrGitRevParse, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Fetch updates local history at path from origin.
func (g *Git) Fetch(ctx context.Context, path string) error {
	if err := checkArgs(path); err != nil {
		return err
	}
	_, err := g.run(ctx, path, errors.ErrGitFetch, "fetch", "--quiet", "origin")
	return err
}

// run executes one git command with output captured. Failures carry the
// trailing stderr line as detail: that is where git puts the human-readable
// reason ("fatal: couldn't find remote ref ...").
func (g *Git) run(ctx context.Context, dir string, code errors.ErrorCode, args ...string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, g.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	g.logger.Debug().
		Strs("args", args).
		Msg("Running git")

	err := cmd.Run()
	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
			// the binary itself, not the operation
			return "", errors.Wrapf(err, errors.ErrGitUnavailable,
				"git binary %q cannot be run", g.binary)
		}
		detail := lastLine(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		g.logger.Error().
			Err(err).
			Strs("args", args).
			Str("stderr", stderr.String()).
			Msg("git command failed")
		return "", errors.Newf(code, "git %s: %s", args[firstVerb(args)], detail)
	}

	return stdout.String(), nil
}

// checkArgs is the defense-in-depth net: nothing user-influenced reaches an
// argv with shell metacharacters in it, even though exec never involves a
// shell.
func checkArgs(args ...string) error {
	for _, a := range args {
		if err := validate.CheckShellSafety(a); err != nil {
			return err
		}
	}
	return nil
}

func firstVerb(args []string) int {
	if len(args) >= 3 && args[0] == "-C" {
		return 2
	}
	return 0
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
