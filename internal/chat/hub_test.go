package chat

import (
	"testing"
)

func newTestClient(id string, buffer int) *Client {
	return &Client{
		ID:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestBroadcastReachesAllSessionViewers(t *testing.T) {
	hub := NewHub(nil, nil)
	a := newTestClient("a", 4)
	b := newTestClient("b", 4)
	other := newTestClient("c", 4)
	hub.Attach("s1", a)
	hub.Attach("s1", b)
	hub.Attach("s2", other)

	hub.Broadcast("s1", map[string]string{"type": "message", "content": "hi"})

	gotA, gotB := drain(a), drain(b)
	if len(gotA) != 1 || len(gotB) != 1 {
		t.Fatalf("expected 1 payload per s1 viewer, got %d and %d", len(gotA), len(gotB))
	}
	if string(gotA[0]) != string(gotB[0]) {
		t.Fatalf("viewers received different payloads: %s vs %s", gotA[0], gotB[0])
	}
	if got := drain(other); len(got) != 0 {
		t.Fatalf("viewer of another session received %d payloads", len(got))
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	hub := NewHub(nil, nil)
	c := newTestClient("a", 4)
	hub.Attach("s1", c)
	hub.Attach("s1", c)
	if n := hub.ViewerCount("s1"); n != 1 {
		t.Fatalf("viewer count = %d, want 1", n)
	}

	hub.Broadcast("s1", "x")
	if got := drain(c); len(got) != 1 {
		t.Fatalf("double-attached viewer received %d payloads, want 1", len(got))
	}
}

func TestDetachRemovesViewerAndSession(t *testing.T) {
	hub := NewHub(nil, nil)
	a := newTestClient("a", 4)
	b := newTestClient("b", 4)
	hub.Attach("s1", a)
	hub.Attach("s1", b)

	hub.Detach("s1", a)
	if n := hub.ViewerCount("s1"); n != 1 {
		t.Fatalf("viewer count after first detach = %d, want 1", n)
	}
	hub.Broadcast("s1", "x")
	if got := drain(a); len(got) != 0 {
		t.Fatalf("detached viewer received %d payloads", len(got))
	}

	hub.Detach("s1", b)
	if n := hub.ViewerCount("s1"); n != 0 {
		t.Fatalf("viewer count after last detach = %d, want 0", n)
	}

	// Detaching an unknown viewer is a no-op.
	hub.Detach("s1", newTestClient("ghost", 1))
}

func TestFailedSendDetachesViewer(t *testing.T) {
	hub := NewHub(nil, nil)
	stuck := newTestClient("stuck", 1)
	healthy := newTestClient("healthy", 4)
	hub.Attach("s1", stuck)
	hub.Attach("s1", healthy)

	hub.Broadcast("s1", "first")  // fills stuck's buffer
	hub.Broadcast("s1", "second") // stuck's send fails, it is detached

	if n := hub.ViewerCount("s1"); n != 1 {
		t.Fatalf("viewer count = %d, want 1 after failed send", n)
	}
	if got := drain(healthy); len(got) != 2 {
		t.Fatalf("healthy viewer received %d payloads, want 2", len(got))
	}
	select {
	case <-stuck.done:
	default:
		t.Fatal("detached viewer was not signaled to stop")
	}
}
