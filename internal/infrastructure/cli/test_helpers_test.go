package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/wiring"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/storage"
)

const drawingPayload = `{
  "drawing": [
    {"filename": "roof.pdf", "roof_plans": [
      {"detail_number": "A1.1", "type": "Roof Plan", "drains": "✓✓✓ (3)", "scuppers": "✓ (1)"},
      {"detail_number": "A1.2", "rtus_curbs": "✓✓ (2)"}
    ]}
  ]
}`

// newProject returns an empty workspace directory with quiet logging.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("DRAFTY_LOG_LEVEL", "error")
	return t.TempDir()
}

// seedSession saves drawingPayload as the workspace's session.
func seedSession(t *testing.T, dir string) {
	t.Helper()
	ws, err := wiring.NewWorkspace(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	defer func() { _ = ws.Close() }()

	repo := storage.NewSessionRepository(ws.Store, nil)
	rec := session.Record{Data: json.RawMessage(drawingPayload), Timestamp: time.Now().UTC()}
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

// writeDrawing creates a small file to select.
func writeDrawing(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("%PDF-1.4 "+name), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// parseServer answers /parse with body and status, and points the
// workspace config at it.
func parseServer(t *testing.T, status int, body string) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("DRAFTY_PARSE_URL", srv.URL)
	return &calls
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command against the workspace in dir.
func runCLI(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runCLIInput(t, dir, "", args...)
}

func runCLIInput(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetArgs(append([]string{"--project", dir}, args...))
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetIn(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// hintOf returns the CLIError hint carried by err.
func hintOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return errorHint(err)
}
