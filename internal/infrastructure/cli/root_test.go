package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHelp(t *testing.T) {
	dir := newProject(t)
	out, _, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"add", "submit", "show", "status", "advance", "export", "serve", "mcp", "watch", "nudge"} {
		assert.Contains(t, out, sub)
	}
}

func TestCompletion(t *testing.T) {
	dir := newProject(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := runCLI(t, dir, "completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestProjectPath(t *testing.T) {
	dir := newProject(t)
	file := writeDrawing(t, dir, "a.pdf")

	_, _, err := runCLI(t, file, "files")
	assert.ErrorContains(t, err, "is not a directory")

	_, _, err = runCLI(t, dir+"/missing", "files")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := newProject(t)
	t.Setenv("DRAFTY_STORAGE_BACKEND", "postgres")

	_, _, err := runCLI(t, dir, "files")
	assert.Equal(t, "Fix .drafty/config.yaml or the DRAFTY_* environment variables", hintOf(t, err))
}

func TestLogLevelOverride(t *testing.T) {
	dir := newProject(t)

	_, _, err := runCLI(t, dir, "--log-level", "debug", "files")
	require.NoError(t, err)

	_, _, err = runCLI(t, dir, "--log-level", "loud", "files")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLongRunningCommandsCanBeSkipped(t *testing.T) {
	dir := newProject(t)
	t.Setenv("DRAFTY_SKIP_MCP_START", "true")
	t.Setenv("DRAFTY_SKIP_SERVE_START", "true")
	t.Setenv("DRAFTY_SKIP_DASHBOARD_RUN", "true")

	for _, args := range [][]string{{"mcp"}, {"serve"}, {"dashboard"}} {
		_, _, err := runCLI(t, dir, args...)
		assert.NoError(t, err, args[0])
	}
}

func TestMCP_UnsupportedTransport(t *testing.T) {
	dir := newProject(t)
	_, _, err := runCLI(t, dir, "mcp", "--transport", "carrier-pigeon")
	assert.ErrorContains(t, err, "unsupported transport")
}

func TestWatch_NotADirectory(t *testing.T) {
	dir := newProject(t)
	_, _, err := runCLI(t, dir, "watch", writeDrawing(t, dir, "a.pdf"))
	assert.ErrorContains(t, err, "is not a directory")
}
