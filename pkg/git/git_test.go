package git_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rev = "0123456789abcdef0123456789abcdef01234567"

// Hostile arguments must be rejected before any process is spawned, so
// these tests never need a git binary.
func TestArgumentSafety(t *testing.T) {
	g := git.New()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "clone_source",
			call: func() error {
				return g.Clone(ctx, "https://github.com/a/b;rm -rf /", "/tmp/x")
			},
		},
		{
			name: "clone_path",
			call: func() error {
				return g.Clone(ctx, "https://github.com/a/b", "/tmp/$(whoami)")
			},
		},
		{
			name: "checkout_revision",
			call: func() error {
				return g.Checkout(ctx, "/tmp/x", rev+"`id`")
			},
		},
		{
			name: "checkout_path",
			call: func() error {
				return g.Checkout(ctx, "/tmp/x|y", rev)
			},
		},
		{
			name: "current_revision_path",
			call: func() error {
				_, err := g.CurrentRevision(ctx, "/tmp/a&b")
				return err
			},
		},
		{
			name: "fetch_path",
			call: func() error {
				return g.Fetch(ctx, "/tmp/a\nb")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrUnsafeArgument))
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestMissingBinaryIsVcsError(t *testing.T) {
	g := git.New(git.WithBinary("/nonexistent/doplug-no-such-git"))

	err := g.Clone(context.Background(), "https://github.com/a/b", t.TempDir()+"/clone")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGitUnavailable))
	assert.True(t, errors.IsVcs(err))
}

func TestCurrentRevisionOutsideRepository(t *testing.T) {
	g := git.New()

	_, err := g.CurrentRevision(context.Background(), t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGitRevParse))
}
