package topics_test

import (
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/doplug/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"manifest.md":  {Data: []byte("# Manifest\n\nDeclared plugins.\n")},
		"lockfile.txt": {Data: []byte("The lock file records installs.\n")},
		"notes.xyz":    {Data: []byte("ignored extension")},
	}
}

func TestNewScansSupportedExtensions(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"lockfile", "manifest"}, tm.ListTopics())
}

func TestGetTopic(t *testing.T) {
	tm, err := topics.New(testFS(), topics.Options{})
	require.NoError(t, err)

	topic, ok := tm.GetTopic("manifest")
	require.True(t, ok)
	assert.Equal(t, ".md", topic.Ext)
	assert.Contains(t, topic.Content, "Declared plugins")

	// flag-style lookup strips dashes
	_, ok = tm.GetTopic("--manifest")
	assert.True(t, ok)

	_, ok = tm.GetTopic("missing")
	assert.False(t, ok)
}

func TestPlainRendererPassesThrough(t *testing.T) {
	r := &topics.PlainRenderer{}
	assert.Equal(t, "content", r.Render("content", ".md"))
}

func TestGlamourRendererIgnoresNonMarkdown(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
}

func TestInitializeAddsHelpCommand(t *testing.T) {
	root := &cobra.Command{Use: "doplug"}

	err := topics.Initialize(root, testFS(), topics.Options{})
	require.NoError(t, err)

	var found bool
	for _, c := range root.Commands() {
		if c.Name() == "help" {
			found = true
		}
	}
	assert.True(t, found)
}
