package room

import "sync"

// evictAfterDrops is how many consecutive failed broadcasts a channel
// survives before the registry treats it as dead and evicts it.
const evictAfterDrops = 4

// Registry maps member ids to their outbound message channels for one
// room. The coordinator owns it; connections register on attach and
// are replaced wholesale on reconnect (at most one live channel per
// member).
type Registry struct {
	mu      sync.Mutex
	conns   map[string]chan<- []byte
	strikes map[string]int // consecutive broadcast drops per member
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   map[string]chan<- []byte{},
		strikes: map[string]int{},
	}
}

// Register replaces any prior channel for the member and forgives any
// strikes against the old one.
func (g *Registry) Register(memberID string, ch chan<- []byte) {
	g.mu.Lock()
	g.conns[memberID] = ch
	delete(g.strikes, memberID)
	g.mu.Unlock()
}

// Unregister removes the member's channel. Room state is untouched; a
// dropped connection is a liveness signal, not a leave.
func (g *Registry) Unregister(memberID string) {
	g.mu.Lock()
	delete(g.conns, memberID)
	delete(g.strikes, memberID)
	g.mu.Unlock()
}

// Broadcast sends msg to every registered channel without blocking.
// A full channel is skipped, and one that keeps dropping broadcasts
// with no successful send in between is evicted as dead; the member
// regains a channel on reconnect. Returns how many sends were dropped
// so the caller can log them.
func (g *Registry) Broadcast(msg []byte) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	dropped := 0
	for id, ch := range g.conns {
		select {
		case ch <- msg:
			delete(g.strikes, id)
		default:
			dropped++
			g.strikes[id]++
			if g.strikes[id] >= evictAfterDrops {
				delete(g.conns, id)
				delete(g.strikes, id)
			}
		}
	}
	return dropped
}

// Send delivers msg to one member only, for reply-style events.
// Reports whether the member had a registered channel with room for
// the message.
func (g *Registry) Send(memberID string, msg []byte) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.conns[memberID]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

func (g *Registry) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}
