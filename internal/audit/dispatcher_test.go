package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

type blockingSink struct {
	release chan struct{}
	got     chan Event
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	<-s.release
	s.got <- e
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 || d.Emitted() != 0 {
		t.Fatal("nil dispatcher must report zero counters")
	}
}

func TestEmitStampsIDAndTimestamp(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "access.allow", Path: "/about"})

	select {
	case e := <-sink.Events():
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Fatalf("expected stamped event, got %+v", e)
		}
		if e.Path != "/about" {
			t.Fatalf("unexpected path %q", e.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDropIfFullCountsDrops(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan Event, 16)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "access.allow"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink and buffer of 1")
	}

	close(sink.release)
	d.Close()

	if d.Emitted()+d.Dropped() != 10 {
		t.Fatalf("emitted %d + dropped %d != 10", d.Emitted(), d.Dropped())
	}
}

func TestCloseDrainsBuffer(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "access.redirect_login"})
	}
	d.Close()

	if got := len(sink.Events()); got != 5 {
		t.Fatalf("expected 5 drained events, got %d", got)
	}
	d.Emit(context.Background(), Event{})
	if d.Emitted() != 5 {
		t.Fatal("emit after close must be ignored")
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONWriterSink(&buf)
	s.Emit(context.Background(), Event{ID: "1", EventType: "access.allow", Path: "/"})
	s.Emit(context.Background(), Event{ID: "2", EventType: "access.redirect_dashboard", Role: "company"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var e Event
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Role != "company" || e.EventType != "access.redirect_dashboard" {
		t.Fatalf("unexpected event %+v", e)
	}
}
