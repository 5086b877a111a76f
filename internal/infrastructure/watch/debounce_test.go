package watch

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	var count atomic.Int32
	var mu sync.Mutex
	var batch []string
	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		count.Add(1)
		mu.Lock()
		batch = paths
		mu.Unlock()
	})
	defer d.Stop()

	names := []string{"b.pdf", "a.pdf", "b.pdf", "c.pdf", "a.pdf"}
	for _, n := range names {
		d.Trigger(n)
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce window to expire
	time.Sleep(150 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback invocation, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if want := []string{"a.pdf", "b.pdf", "c.pdf"}; !reflect.DeepEqual(batch, want) {
		t.Errorf("batch = %v, want %v", batch, want)
	}
}

func TestDebouncer_SeparateBatches(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(paths []string) {
		count.Add(1)
	})
	defer d.Stop()

	d.Trigger("a.pdf")
	time.Sleep(100 * time.Millisecond)
	d.Trigger("b.pdf")
	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 2 {
		t.Errorf("expected 2 callback invocations, got %d", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		count.Add(1)
	})

	d.Trigger("a.pdf")
	d.Stop()
	d.Trigger("b.pdf")

	time.Sleep(100 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 callback invocations after stop, got %d", got)
	}
}
