package feed

import (
	"testing"

	"github.com/coder/websocket"
)

func TestRegisterAndCount(t *testing.T) {
	reg := NewRegistry()
	if reg.Count() != 0 {
		t.Fatalf("Expected 0 sessions, got %d", reg.Count())
	}

	reg.Register("s1", &websocket.Conn{})
	reg.Register("s2", &websocket.Conn{})

	if reg.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", reg.Count())
	}
}

func TestUnregisterRemovesOwnConnection(t *testing.T) {
	reg := NewRegistry()
	conn := &websocket.Conn{}
	reg.Register("s1", conn)

	reg.Unregister("s1", conn)
	if reg.Count() != 0 {
		t.Errorf("Expected 0 sessions after unregister, got %d", reg.Count())
	}
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	reg := NewRegistry()
	original := &websocket.Conn{}
	replacement := &websocket.Conn{}

	reg.Register("s1", original)
	reg.Register("s1", replacement)

	// A late unregister from the replaced connection must not drop the
	// replacement.
	reg.Unregister("s1", original)
	if reg.Count() != 1 {
		t.Errorf("Expected replacement session to survive, got %d sessions", reg.Count())
	}

	reg.Unregister("s1", replacement)
	if reg.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", reg.Count())
	}
}

func TestUnregisterUnknownSession(t *testing.T) {
	reg := NewRegistry()
	reg.Unregister("missing", &websocket.Conn{})
	if reg.Count() != 0 {
		t.Errorf("Expected 0 sessions, got %d", reg.Count())
	}
}
