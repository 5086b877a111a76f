package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity(t *testing.T) {
	assert.Equal(t, "#48bb78", SeveritySuccess.Color())
	assert.Equal(t, "#fc8181", SeverityError.Color())
	assert.Equal(t, "#4299e1", SeverityInfo.Color())
	assert.Equal(t, "#f6ad55", SeverityWarning.Color())

	sev, err := ParseSeverity("warning")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, sev)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestQueue_Expiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue()
	q.now = func() time.Time { return base }

	old := New(SeverityInfo, "Switched to cards view")
	old.CreatedAt = base.Add(-DisplayDuration)
	fresh := New(SeveritySuccess, "Status updated to reviewing")
	fresh.CreatedAt = base.Add(-time.Second)

	q.Notify(old)
	q.Notify(fresh)

	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)

	latest, ok := q.Latest()
	require.True(t, ok)
	assert.Equal(t, "Status updated to reviewing", latest.Message)

	q.now = func() time.Time { return base.Add(DisplayDuration) }
	_, ok = q.Latest()
	assert.False(t, ok)
}

func TestMulti(t *testing.T) {
	var a, b []string
	m := Multi{
		NotifierFunc(func(n Notice) { a = append(a, n.Message) }),
		nil,
		NotifierFunc(func(n Notice) { b = append(b, n.Message) }),
	}
	m.Notify(New(SeverityError, "Error parsing documents"))

	assert.Equal(t, []string{"Error parsing documents"}, a)
	assert.Equal(t, a, b)
	Discard.Notify(New(SeverityInfo, "ignored"))
}
