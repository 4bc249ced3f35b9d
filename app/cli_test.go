package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command line against an empty config file
func runCLI(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "findtext.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("{}\n"), 0o644))

	var out, errOut bytes.Buffer
	code := execute(ctx, NewRootCommand(&out, &errOut), append([]string{"--config", cfg}, args...), &errOut)
	return code, out.String(), errOut.String()
}

func writeDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Hello world\nnothing here\nhello again\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("no greeting\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.md"), []byte("hello markdown\n"), 0o644))
	return dir
}

func TestSearchText(t *testing.T) {
	dir := writeDocs(t)

	code, out, errOut := runCLI(t, context.Background(), "hello", dir, "--color", "never")
	require.Equal(t, exitOK, code, errOut)

	assert.Contains(t, out, filepath.Join(dir, "a.txt")+":")
	assert.Contains(t, out, "  line 1: Hello world\n")
	assert.Contains(t, out, "  line 3: hello again\n")
	assert.NotContains(t, out, "c.md")
	assert.Contains(t, out, "2 matches in 1 of 2 documents")
	assert.NotContains(t, out, "\x1b[")
}

func TestSearchCaseSensitiveNoMatch(t *testing.T) {
	dir := writeDocs(t)

	code, out, _ := runCLI(t, context.Background(), "HELLO", dir, "-s", "--color", "never")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `No matches found for "HELLO".`)
}

func TestSearchExtensionFlag(t *testing.T) {
	dir := writeDocs(t)

	code, out, _ := runCLI(t, context.Background(), "hello", dir, "-e", "md", "--color", "never")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "line 1: hello markdown")
	assert.NotContains(t, out, "a.txt")
}

func TestSearchJSON(t *testing.T) {
	dir := writeDocs(t)

	code, out, errOut := runCLI(t, context.Background(), "-x", `hel+o\s+\w+`, dir, "-f", "json")
	require.Equal(t, exitOK, code, errOut)

	var report struct {
		Pattern string `json:"pattern"`
		Results []struct {
			Document struct {
				Path string `json:"path"`
			} `json:"document"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, `hel+o\s+\w+`, report.Pattern)
	require.Len(t, report.Results, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), report.Results[0].Document.Path)
}

func TestSearchWarnings(t *testing.T) {
	dir := writeDocs(t)
	missing := filepath.Join(dir, "missing.txt")

	code, out, errOut := runCLI(t, context.Background(), "hello", filepath.Join(dir, "a.txt"), missing, "--color", "never")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "line 1: Hello world")
	assert.Contains(t, errOut, "Warning: "+missing+": ")
}

func TestSearchErrors(t *testing.T) {
	dir := writeDocs(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty pattern", []string{"", dir}, "invalid pattern"},
		{"bad regex", []string{"-x", "(", dir}, "invalid pattern"},
		{"bad format", []string{"hello", dir, "-f", "xml"}, "format"},
		{"bad style", []string{"hello", dir, "--style", "italic"}, "style"},
		{"no pattern", nil, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, context.Background(), tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestSearchInterrupted(t *testing.T) {
	dir := writeDocs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, errOut := runCLI(t, ctx, "hello", dir, "--color", "never")
	assert.Equal(t, exitInterrupted, code)
	assert.Contains(t, errOut, "Interrupted")
}

func TestListCommand(t *testing.T) {
	dir := writeDocs(t)

	code, out, errOut := runCLI(t, context.Background(), "list", dir)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, filepath.Join(dir, "a.txt"))
	assert.Contains(t, out, filepath.Join(dir, "b.txt"))
	assert.NotContains(t, out, "c.md")
	assert.Contains(t, out, "2 documents")
}

func TestSearchPatternNamedLikeSubcommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.txt"), []byte("shopping list\n"), 0o644))

	code, out, errOut := runCLI(t, context.Background(), "--color", "never", "--", "list", dir)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "line 1: shopping list")
	assert.Contains(t, out, "1 matches in 1 of 1 documents")
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, []string{"."}, defaultPaths(nil))
	assert.Equal(t, []string{"a", "b"}, defaultPaths([]string{"a", "b"}))
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled("auto", os.Stdout))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "INFO")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger.Info("documents resolved", "documents", 2)
	assert.Contains(t, buf.String(), "msg=\"documents resolved\" documents=2")

	assert.False(t, newLogger(&buf, "bogus").Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, newLogger(&buf, "debug").Enabled(context.Background(), slog.LevelDebug))
}
