package room

import "testing"

func TestBroadcastSkipsFullChannelWithoutBlocking(t *testing.T) {
	g := NewRegistry()
	healthy := make(chan []byte, 4)
	stuck := make(chan []byte) // unbuffered, nobody reading
	g.Register("alice", healthy)
	g.Register("bob", stuck)

	if dropped := g.Broadcast([]byte(`x`)); dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", dropped)
	}
	if len(healthy) != 1 {
		t.Fatal("healthy channel must still receive the broadcast")
	}
	if g.len() != 2 {
		t.Fatalf("one drop must not evict, got %d members", g.len())
	}
}

func TestBroadcastEvictsPersistentlyDeadChannel(t *testing.T) {
	g := NewRegistry()
	healthy := make(chan []byte, 2*evictAfterDrops)
	stuck := make(chan []byte)
	g.Register("alice", healthy)
	g.Register("bob", stuck)

	for i := 0; i < evictAfterDrops; i++ {
		if dropped := g.Broadcast([]byte(`x`)); dropped != 1 {
			t.Fatalf("broadcast %d: expected 1 drop, got %d", i, dropped)
		}
	}
	if g.len() != 1 {
		t.Fatalf("dead channel must be evicted after %d straight drops, got %d members", evictAfterDrops, g.len())
	}

	// Subsequent broadcasts no longer count drops for the evictee.
	if dropped := g.Broadcast([]byte(`x`)); dropped != 0 {
		t.Fatalf("expected 0 drops after eviction, got %d", dropped)
	}
	if len(healthy) != evictAfterDrops+1 {
		t.Fatalf("healthy channel must have every broadcast, got %d", len(healthy))
	}
}

func TestSuccessfulSendResetsStrikes(t *testing.T) {
	g := NewRegistry()
	ch := make(chan []byte, 1)
	g.Register("alice", ch)

	// Fill the buffer, then rack up drops one short of eviction.
	g.Broadcast([]byte(`x`))
	for i := 0; i < evictAfterDrops-1; i++ {
		g.Broadcast([]byte(`x`))
	}
	if g.len() != 1 {
		t.Fatal("channel must survive below the drop threshold")
	}

	// Draining lets the next broadcast through, which forgives the
	// earlier drops.
	<-ch
	g.Broadcast([]byte(`x`))
	for i := 0; i < evictAfterDrops-1; i++ {
		g.Broadcast([]byte(`x`))
	}
	if g.len() != 1 {
		t.Fatal("strikes must reset after a successful send")
	}
}

func TestRegisterReplacementClearsStrikes(t *testing.T) {
	g := NewRegistry()
	stuck := make(chan []byte)
	g.Register("alice", stuck)

	for i := 0; i < evictAfterDrops-1; i++ {
		g.Broadcast([]byte(`x`))
	}

	// Reconnect swaps in a fresh channel; old strikes must not carry
	// over to it.
	fresh := make(chan []byte, 1)
	g.Register("alice", fresh)
	g.Broadcast([]byte(`x`))
	if g.len() != 1 {
		t.Fatal("replacement channel must start with a clean record")
	}
	if len(fresh) != 1 {
		t.Fatal("replacement channel must receive broadcasts")
	}
}
