package convert

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeThemes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.css"), []byte("body { color: black; }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dracula.css"), []byte("body { background: #282a36; }"), 0644))
	return dir
}

func TestNewUnknownThemeFallsBackToDefault(t *testing.T) {
	c, err := New(writeThemes(t), "no-such-theme", testLogger())
	require.NoError(t, err)
	assert.Contains(t, c.cssPath, "default.css")
}

func TestNewMissingThemesDirIsFatal(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), "normal", testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "themes directory not found")
}

func TestHTMLInlinesThemeCSS(t *testing.T) {
	c, err := New(writeThemes(t), "dracula", testLogger())
	require.NoError(t, err)

	dir := t.TempDir()
	mdPath := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# Heading\n\nSome **bold** text.\n"), 0644))

	outPath, err := c.HTML(mdPath, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.html"), outPath)

	page, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1")
	assert.Contains(t, string(page), "<strong>bold</strong>")
	assert.Contains(t, string(page), "#282a36")
	assert.Contains(t, string(page), "<title>doc</title>")
}

func TestHTMLRefusesOverwriteWithoutForce(t *testing.T) {
	c, err := New(writeThemes(t), "default", testLogger())
	require.NoError(t, err)

	dir := t.TempDir()
	mdPath := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# Heading\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.html"), []byte("old"), 0644))

	_, err = c.HTML(mdPath, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = c.HTML(mdPath, true)
	assert.NoError(t, err)
}
