package events

import (
	"errors"
	"testing"
)

func TestInMemoryPublisher(t *testing.T) {
	p := NewInMemoryPublisher()

	var got []string
	p.Subscribe(func(e *Event) error {
		got = append(got, "first:"+e.Type)
		return errors.New("boom")
	})
	p.Subscribe(func(e *Event) error {
		got = append(got, "second:"+e.SheetID)
		return nil
	})

	e := New(TypeWorkflowChanged, "Status updated to verified").WithSheet("abc").WithMeta("status", "verified")
	if err := p.Publish(e); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 2 || got[0] != "first:workflow.changed" || got[1] != "second:abc" {
		t.Errorf("unexpected deliveries %v", got)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Error("event should be stamped")
	}
	if e.Metadata["status"] != "verified" {
		t.Errorf("unexpected metadata %v", e.Metadata)
	}
}
