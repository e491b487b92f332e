package room

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/thinkingstill/KegelRoulette/pkg/metrics"
)

// Coordinator owns one room's state. Every mutating operation runs
// under the coordinator's mutex from first read through persistence
// and broadcast, so operations on a room are totally ordered while
// different rooms proceed independently.
//
// The coordinator may exist while the room does not: connections
// attach by room identity before create-room arrives, and a pruned
// room leaves the coordinator behind until the hub sweeps it away.
// room == nil means absent. An evicted coordinator is retired first
// (see Retire), so at most one live coordinator ever owns a room
// identity even when eviction races a fresh checkout.
type Coordinator struct {
	id    string
	store Store
	log   *slog.Logger
	reg   *Registry

	clock             func() time.Time
	roll              func(n int) int
	inactiveThreshold time.Duration

	mu        sync.Mutex
	room      *Room
	loadTried bool
	retired   bool
}

func NewCoordinator(id string, st Store, log *slog.Logger) *Coordinator {
	return &Coordinator{
		id:                id,
		store:             st,
		log:               log,
		reg:               NewRegistry(),
		clock:             time.Now,
		roll:              rand.IntN,
		inactiveThreshold: InactiveThreshold,
	}
}

// Attach registers a member's outbound channel, refreshes their
// liveness, and pushes the current room state to the new channel if
// the room exists. Reports whether the coordinator accepted the
// connection; a retired coordinator refuses, and the caller must
// fetch a fresh one from the hub.
func (c *Coordinator) Attach(ctx context.Context, memberID string, ch chan<- []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return false
	}
	c.ensureLoaded(ctx)
	c.reg.Register(memberID, ch)
	if c.room != nil {
		c.room.Touch(memberID, c.clock())
		c.reg.Send(memberID, encodeEvent(EventRoomState, c.room))
	}
	return true
}

// Detach unregisters the member's channel. Membership is untouched;
// the activity timestamp gives them a grace period to reconnect
// before pruning removes them.
func (c *Coordinator) Detach(memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room != nil {
		c.room.Touch(memberID, c.clock())
	}
	c.reg.Unregister(memberID)
}

// Create initializes the room with the creator as sole member and
// first turn holder. Returns ErrExists when the identity already has
// a live room.
func (c *Coordinator) Create(ctx context.Context, creatorID, displayName, avatarSeed string, taskMagnitude int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return ErrRetired
	}
	c.ensureLoaded(ctx)
	if c.room != nil {
		return ErrExists
	}
	c.room = New(c.id, creatorID, displayName, avatarSeed, taskMagnitude, c.clock())
	c.loadTried = true
	metrics.RoomsCreated.Inc()
	c.log.Info("room.created", "room", c.id, "creator", creatorID, "magnitude", c.room.TaskMagnitude)
	c.save(ctx)
	c.broadcast(EventRoomState, c.room)
	return nil
}

// Join adds the member and broadcasts the new state. Joining twice
// with the same id is a no-op merge. Returns ErrNotFound when the
// room is absent.
func (c *Coordinator) Join(ctx context.Context, memberID, displayName, avatarSeed string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return ErrRetired
	}
	c.ensureLoaded(ctx)
	if c.room == nil {
		return ErrNotFound
	}
	c.room.Join(memberID, displayName, avatarSeed, c.clock())
	c.save(ctx)
	c.broadcast(EventRoomState, c.room)
	return nil
}

// RequestState replies the current room state to the requester only.
func (c *Coordinator) RequestState(ctx context.Context, memberID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return ErrRetired
	}
	c.ensureLoaded(ctx)
	if c.room == nil {
		return ErrNotFound
	}
	c.reg.Send(memberID, encodeEvent(EventRoomState, c.room))
	return nil
}

// Snapshot returns a copy of the room for read-only callers.
func (c *Coordinator) Snapshot(ctx context.Context) (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return nil, ErrRetired
	}
	c.ensureLoaded(ctx)
	if c.room == nil {
		return nil, ErrNotFound
	}
	return c.room.Clone(), nil
}

// Spin picks the next winner and broadcasts the outcome. A silent
// no-op on an absent or empty room.
func (c *Coordinator) Spin(ctx context.Context, memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return
	}
	c.ensureLoaded(ctx)
	if c.room == nil || len(c.room.Members) == 0 {
		return
	}
	c.room.Touch(memberID, c.clock())
	winner := SelectWinner(c.room.Members, c.room.LastWinnerID, c.room.LastWinnerStreak, c.roll)
	winnerID := c.room.Members[winner].ID
	if winnerID == c.room.LastWinnerID {
		c.room.LastWinnerStreak++
	} else {
		c.room.LastWinnerID = winnerID
		c.room.LastWinnerStreak = 1
	}
	metrics.Spins.Inc()
	c.save(ctx)
	c.broadcast(EventWheelSpun, SpinResult{WinnerIndex: winner})
}

// Complete credits the member with one task's worth of completions and
// hands them the turn. A silent no-op on an absent room or unknown
// member.
func (c *Coordinator) Complete(ctx context.Context, memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return
	}
	c.ensureLoaded(ctx)
	if c.room == nil {
		return
	}
	c.room.Touch(memberID, c.clock())
	c.room.RecordCompletion(memberID, c.room.TaskMagnitude)
	c.room.SetTurnHolder(memberID)
	c.save(ctx)
	c.broadcast(EventRoomState, c.room)
}

// Heartbeat refreshes the member's liveness and runs a prune. A prune
// that changes membership broadcasts the new state; one that empties
// the room destroys it.
func (c *Coordinator) Heartbeat(ctx context.Context, memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return
	}
	c.ensureLoaded(ctx)
	if c.room == nil {
		return
	}
	c.room.Touch(memberID, c.clock())
	c.prune(ctx)
}

// Sweep runs the timer-driven prune. Returns true while the room is
// still live.
func (c *Coordinator) Sweep(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return false
	}
	c.prune(ctx)
	return c.room != nil
}

// Idle reports whether the coordinator holds no room and no
// connections.
func (c *Coordinator) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room == nil && c.reg.len() == 0
}

// Retire marks an idle coordinator as permanently out of service and
// reports whether it succeeded. Once retired, every operation refuses
// to run (and never consults the store), so a caller holding a stale
// pointer cannot revive a room behind the hub's back. The hub calls
// this under its own lock so handout and eviction cannot interleave.
func (c *Coordinator) Retire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room != nil || c.reg.len() > 0 {
		return false
	}
	c.retired = true
	return true
}

// NotifyError sends an error event to a single member.
func (c *Coordinator) NotifyError(memberID, code, message string) {
	c.reg.Send(memberID, encodeEvent(EventError, ErrorEvent{Code: code, Message: message}))
}

// prune removes inactive members and handles the fallout: persist,
// broadcast on change, destroy on empty. Caller holds the lock.
func (c *Coordinator) prune(ctx context.Context) {
	before := len(c.room.Members)
	changed := c.room.PruneInactive(c.clock(), c.inactiveThreshold)
	if changed {
		metrics.MembersPruned.Add(float64(before - len(c.room.Members)))
		c.log.Info("room.pruned", "room", c.id, "removed", before-len(c.room.Members), "remaining", len(c.room.Members))
	}
	if len(c.room.Members) == 0 {
		c.destroy(ctx)
		return
	}
	c.save(ctx)
	if changed {
		c.broadcast(EventRoomState, c.room)
	}
}

// destroy transitions the room to absent. Caller holds the lock.
func (c *Coordinator) destroy(ctx context.Context) {
	c.room = nil
	metrics.RoomsDestroyed.Inc()
	c.log.Info("room.destroyed", "room", c.id)
	if err := c.store.DeleteRoom(ctx, c.id); err != nil {
		metrics.SnapshotFailures.Inc()
		c.log.Warn("snapshot.delete", "room", c.id, "err", err)
	}
}

// ensureLoaded consults the store once, the first time this
// coordinator acts on a room it has not materialized. Afterwards the
// in-memory copy is authoritative. Caller holds the lock.
func (c *Coordinator) ensureLoaded(ctx context.Context) {
	if c.room != nil || c.loadTried || c.retired {
		return
	}
	c.loadTried = true
	r, err := c.store.LoadRoom(ctx, c.id)
	if err != nil {
		c.log.Warn("snapshot.load", "room", c.id, "err", err)
		return
	}
	if r != nil {
		c.room = r
		c.log.Info("room.recovered", "room", c.id, "members", len(r.Members))
	}
}

// save snapshots the room, best-effort. Caller holds the lock.
func (c *Coordinator) save(ctx context.Context) {
	if err := c.store.SaveRoom(ctx, c.room.Clone()); err != nil {
		metrics.SnapshotFailures.Inc()
		c.log.Warn("snapshot.save", "room", c.id, "err", err)
	}
}

// broadcast fans an event out to every attached member. Caller holds
// the lock, so members observe events in exactly the order operations
// were accepted.
func (c *Coordinator) broadcast(typ string, payload any) {
	if dropped := c.reg.Broadcast(encodeEvent(typ, payload)); dropped > 0 {
		metrics.BroadcastDrops.Add(float64(dropped))
		c.log.Debug("broadcast.dropped", "room", c.id, "type", typ, "count", dropped)
	}
}
