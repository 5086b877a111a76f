package nudge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/notify"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/render"
)

type stubSource struct {
	pending    []render.SheetView
	refreshes  int
	refreshErr error
}

func (s *stubSource) Refresh(context.Context) error {
	s.refreshes++
	return s.refreshErr
}

func (s *stubSource) Pending() []render.SheetView { return s.pending }

func views(n int) []render.SheetView {
	out := make([]render.SheetView, n)
	for i := range out {
		out[i] = render.SheetView{Detail: fmt.Sprintf("A1.%d", i+1), Status: workflow.StatusDetected}
	}
	return out
}

func TestNew_ValidatesSchedule(t *testing.T) {
	_, err := New("", &stubSource{}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New("every tuesday", &stubSource{}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New("0 9 * * 1-5", &stubSource{}, nil, nil, nil)
	assert.NoError(t, err)
}

func TestNudge(t *testing.T) {
	src := &stubSource{pending: views(2), refreshErr: errors.New("no session")}
	src.pending[1].Detail = ""
	src.pending[1].Status = workflow.StatusReviewing

	var notices []notify.Notice
	pub := events.NewInMemoryPublisher()
	var published []*events.Event
	pub.Subscribe(func(e *events.Event) error {
		published = append(published, e)
		return nil
	})

	s, err := New("@hourly", src, pub, notify.NotifierFunc(func(n notify.Notice) {
		notices = append(notices, n)
	}), nil)
	require.NoError(t, err)

	assert.True(t, s.Nudge(context.Background()))
	assert.Equal(t, 1, src.refreshes)

	want := "2 sheet(s) awaiting review: A1.1 (detected), - (reviewing)"
	require.Len(t, notices, 1)
	assert.Equal(t, want, notices[0].Message)
	assert.Equal(t, notify.SeverityInfo, notices[0].Severity)

	require.Len(t, published, 1)
	assert.Equal(t, events.TypeReviewNudge, published[0].Type)
	assert.Equal(t, "2", published[0].Metadata["pending"])
}

func TestNudge_NothingPending(t *testing.T) {
	var notices int
	s, err := New("@hourly", &stubSource{}, nil, notify.NotifierFunc(func(notify.Notice) { notices++ }), nil)
	require.NoError(t, err)

	assert.False(t, s.Nudge(context.Background()))
	assert.Zero(t, notices)
}

func TestMessage_Truncates(t *testing.T) {
	got := Message(views(7))
	assert.Equal(t,
		"7 sheet(s) awaiting review: A1.1 (detected), A1.2 (detected), A1.3 (detected), A1.4 (detected), A1.5 (detected), and 2 more",
		got)
}

func TestRun_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := New("@every 1h", &stubSource{}, nil, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
