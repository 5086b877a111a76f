package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/drawing"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
)

type fakeTarget struct {
	selected  []string
	submits   int
	submitErr error
}

func (f *fakeTarget) Replace(_ context.Context, cat session.Category, paths ...string) error {
	if cat != session.CategoryDrawing {
		return errors.New("unexpected category")
	}
	f.selected = paths
	return nil
}

func (f *fakeTarget) Submit(context.Context) (*drawing.Set, error) {
	f.submits++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &drawing.Set{}, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0600))
}

func TestAutoSubmitter_Sync(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b-roof.pdf"))
	touch(t, filepath.Join(dir, "a-site.PDF"))
	touch(t, filepath.Join(dir, "level-2", "A201.pdf"))
	touch(t, filepath.Join(dir, "readme.txt"))

	target := &fakeTarget{}
	a := NewAutoSubmitter(dir, target, nil)
	require.NoError(t, a.Sync(context.Background()))

	assert.Equal(t, []string{
		filepath.Join(dir, "a-site.PDF"),
		filepath.Join(dir, "b-roof.pdf"),
		filepath.Join(dir, "level-2", "A201.pdf"),
	}, target.selected)
	assert.Equal(t, 1, target.submits)
}

func TestAutoSubmitter_EmptyFolderSkipsSubmit(t *testing.T) {
	target := &fakeTarget{selected: []string{"stale.pdf"}}
	a := NewAutoSubmitter(t.TempDir(), target, nil)

	require.NoError(t, a.Sync(context.Background()))
	assert.Empty(t, target.selected)
	assert.Zero(t, target.submits)
}

func TestAutoSubmitter_InFlightIsLogged(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "roof.pdf"))

	core, logs := observer.New(zap.InfoLevel)
	target := &fakeTarget{submitErr: application.ErrSubmitInFlight}
	a := NewAutoSubmitter(dir, target, zap.New(core))

	require.NoError(t, a.Sync(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("submit already in flight, change skipped").Len())
}

func TestAutoSubmitter_OnChangeLogsFailures(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "roof.pdf"))

	core, logs := observer.New(zap.InfoLevel)
	target := &fakeTarget{submitErr: errors.New("parse service down")}
	a := NewAutoSubmitter(dir, target, zap.New(core))

	a.OnChange(context.Background())([]string{filepath.Join(dir, "roof.pdf")})

	entries := logs.FilterMessage("auto-submit failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "parse service down")
}

func TestAutoSubmitter_MissingDir(t *testing.T) {
	a := NewAutoSubmitter(filepath.Join(t.TempDir(), "nope"), &fakeTarget{}, nil)
	assert.Error(t, a.Sync(context.Background()))
}
