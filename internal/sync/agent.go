// Package sync implements the per-trip-view client sync agent: local state,
// room membership, idempotent application of broadcast events, and the
// periodic reconciliation fetch that corrects any drift.
//
// The agent converges from two independent update sources — pushed broadcast
// events and the polled full re-fetch — onto one state cell. Applies are
// idempotent and order-independent relative to the re-fetch, so a missed,
// duplicated, or reordered event is repaired by the next poll.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roamline/backend/internal/domain"
)

// DefaultPollInterval is how often the agent re-fetches full trip state as a
// consistency backstop when no interval is configured.
const DefaultPollInterval = 30 * time.Second

// ErrClosed is returned by operations invoked after Close.
var ErrClosed = errors.New("sync agent closed")

// State is the agent's lifecycle state.
type State int

const (
	// StateLoading is the initial state while the first fetch is in flight.
	StateLoading State = iota
	// StateSynced means local state reflects the most recent successful fetch
	// plus any broadcast events applied since.
	StateSynced
	// StateStale means the last reconciliation fetch failed; local state is
	// the last known good copy and a reconnect is needed.
	StateStale
	// StateError means the opening fetch failed; the view may retry by
	// calling Open again.
	StateError
	// StateClosed is terminal; no further events are applied.
	StateClosed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSynced:
		return "synced"
	case StateStale:
		return "stale"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is one consistent copy of a trip view's state.
type Snapshot struct {
	Trip       domain.Trip
	Activities []domain.Activity
}

// Store is the persistent-truth boundary the agent fetches from and mutates
// through. Implementations must return domain.ErrNotFound for unknown IDs
// and wrap unreachable-backend failures in domain.ErrTransport.
type Store interface {
	FetchTrip(ctx context.Context, tripID uuid.UUID) (Snapshot, error)
	CreateActivity(ctx context.Context, tripID uuid.UUID, activity domain.Activity) (domain.Activity, error)
	UpdateActivity(ctx context.Context, tripID, activityID uuid.UUID, update domain.ActivityUpdate) (domain.Activity, error)
	DeleteActivity(ctx context.Context, tripID, activityID uuid.UUID) error
	ReplaceNotes(ctx context.Context, tripID uuid.UUID, notes domain.NotesMap) error
}

// Room is the real-time room membership boundary. Join and Leave mirror the
// view's mount and unmount; events arrive separately via Agent.Apply.
type Room interface {
	Join(tripID uuid.UUID) error
	Leave(tripID uuid.UUID) error
}

// Options tune an Agent. The zero value is usable.
type Options struct {
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
	// Logger receives fetch and apply diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
	// OnChange, if set, is invoked with a fresh snapshot after every state
	// change. Called with the agent's lock held; it must not call back into
	// the agent.
	OnChange func(Snapshot)
}

// Agent maintains one open trip view's local state.
type Agent struct {
	store    Store
	room     Room
	tripID   uuid.UUID
	interval time.Duration
	log      *slog.Logger
	onChange func(Snapshot)

	mu         sync.Mutex
	state      State
	trip       domain.Trip
	activities []domain.Activity
	done       chan struct{}
}

// New builds an Agent for the given trip. Call Open to load state and join
// the room.
func New(store Store, room Room, tripID uuid.UUID, opts Options) *Agent {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Agent{
		store:    store,
		room:     room,
		tripID:   tripID,
		interval: interval,
		log:      log,
		onChange: opts.OnChange,
		state:    StateLoading,
	}
}

// Open fetches full trip state, joins the trip's room, and starts the
// reconciliation poller. On fetch failure the agent enters StateError and
// the caller may retry by calling Open again.
func (a *Agent) Open(ctx context.Context) error {
	a.mu.Lock()
	if a.state == StateClosed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.done != nil {
		// Already open and polling; nothing to do.
		a.mu.Unlock()
		return nil
	}
	a.state = StateLoading
	a.mu.Unlock()

	snap, err := a.store.FetchTrip(ctx, a.tripID)
	if err != nil {
		a.mu.Lock()
		if a.state != StateClosed {
			a.state = StateError
		}
		a.mu.Unlock()
		return fmt.Errorf("sync.Agent.Open: %w", err)
	}

	a.mu.Lock()
	if a.state == StateClosed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.install(snap)
	a.state = StateSynced
	a.done = make(chan struct{})
	a.mu.Unlock()

	if err := a.room.Join(a.tripID); err != nil {
		// Membership is best-effort: the poller alone still converges, so a
		// failed join degrades to poll-only rather than failing the open.
		a.log.Warn("room join failed; relying on reconciliation fetch", "trip_id", a.tripID, "error", err)
	}

	go a.poll(a.done)
	return nil
}

// Apply folds one broadcast event into local state. Applies are idempotent:
//   - added: replace an existing record with the same ID, else append;
//   - updated: replace the matching record, no-op if absent (stale event);
//   - deleted: remove the matching record, no-op if absent.
//
// Events for other trips and events arriving before the first successful
// fetch or after Close are discarded.
func (a *Agent) Apply(evt domain.Event) {
	if evt.TripID != a.tripID {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateSynced && a.state != StateStale {
		return
	}

	switch evt.Kind {
	case domain.EventActivityAdded, domain.EventActivityUpdated:
		if evt.Activity == nil {
			return
		}
		replaced := false
		for i := range a.activities {
			if a.activities[i].ID == evt.ActivityID {
				a.activities[i] = *evt.Activity
				replaced = true
				break
			}
		}
		if !replaced {
			if evt.Kind == domain.EventActivityUpdated {
				// An update for a record we no longer hold is stale; the
				// next reconciliation fetch resolves it either way.
				return
			}
			a.activities = append(a.activities, *evt.Activity)
		}
	case domain.EventActivityDeleted:
		kept := a.activities[:0]
		for _, act := range a.activities {
			if act.ID != evt.ActivityID {
				kept = append(kept, act)
			}
		}
		a.activities = kept
	default:
		return
	}

	a.notifyLocked()
}

// Refresh re-fetches full trip state and replaces local activity and notes
// state wholesale. On failure the agent keeps its last known good state and
// enters StateStale. Results that arrive after Close are discarded.
func (a *Agent) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if a.state == StateClosed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.mu.Unlock()

	snap, err := a.store.FetchTrip(ctx, a.tripID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateClosed {
		// The view closed while the fetch was in flight.
		return ErrClosed
	}
	if err != nil {
		a.state = StateStale
		a.notifyLocked()
		return fmt.Errorf("sync.Agent.Refresh: %w", err)
	}

	a.install(snap)
	a.state = StateSynced
	a.notifyLocked()
	return nil
}

// AddActivity persists a new activity then re-fetches full state. The agent
// learns of its own mutation via the re-fetch, not via the broadcast path;
// other viewers are notified by the server's broadcast.
func (a *Agent) AddActivity(ctx context.Context, activity domain.Activity) error {
	if _, err := a.store.CreateActivity(ctx, a.tripID, activity); err != nil {
		return fmt.Errorf("sync.Agent.AddActivity: %w", err)
	}
	return a.Refresh(ctx)
}

// UpdateActivity persists a partial update then re-fetches full state.
func (a *Agent) UpdateActivity(ctx context.Context, activityID uuid.UUID, update domain.ActivityUpdate) error {
	if _, err := a.store.UpdateActivity(ctx, a.tripID, activityID, update); err != nil {
		return fmt.Errorf("sync.Agent.UpdateActivity: %w", err)
	}
	return a.Refresh(ctx)
}

// DeleteActivity deletes an activity then re-fetches full state.
func (a *Agent) DeleteActivity(ctx context.Context, activityID uuid.UUID) error {
	if err := a.store.DeleteActivity(ctx, a.tripID, activityID); err != nil {
		return fmt.Errorf("sync.Agent.DeleteActivity: %w", err)
	}
	return a.Refresh(ctx)
}

// SetNote optimistically updates the note at (date, hour) locally, then
// persists the entire notes map. If persistence fails the local edit is
// rolled back and the error surfaced. The whole map is written, so the last
// writer to persist wins and concurrent edits to other keys may be lost —
// a documented property of the map-overwrite model, not a bug to mask.
func (a *Agent) SetNote(ctx context.Context, date time.Time, hour int, text string) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour must be in 0..23", domain.ErrValidation)
	}
	key := domain.NoteKey(date, hour)

	a.mu.Lock()
	if a.state == StateClosed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.trip.HourlyNotes == nil {
		a.trip.HourlyNotes = domain.NotesMap{}
	}
	prev, had := a.trip.HourlyNotes[key]
	a.trip.HourlyNotes[key] = text
	snapshot := a.trip.HourlyNotes.Clone()
	a.notifyLocked()
	a.mu.Unlock()

	if err := a.store.ReplaceNotes(ctx, a.tripID, snapshot); err != nil {
		a.mu.Lock()
		if a.state != StateClosed {
			if had {
				a.trip.HourlyNotes[key] = prev
			} else {
				delete(a.trip.HourlyNotes, key)
			}
			a.notifyLocked()
		}
		a.mu.Unlock()
		return fmt.Errorf("sync.Agent.SetNote: %w", err)
	}
	return nil
}

// Close leaves the room, stops the poller, and transitions to StateClosed.
// No further events are applied. Close is idempotent.
func (a *Agent) Close() {
	a.mu.Lock()
	if a.state == StateClosed {
		a.mu.Unlock()
		return
	}
	joined := a.done != nil
	a.state = StateClosed
	if a.done != nil {
		close(a.done)
		a.done = nil
	}
	a.mu.Unlock()

	if joined {
		if err := a.room.Leave(a.tripID); err != nil {
			a.log.Debug("room leave failed", "trip_id", a.tripID, "error", err)
		}
	}
}

// State returns the agent's current lifecycle state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Snapshot returns an independent copy of the current local state.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// poll runs the reconciliation loop until the done channel closes. Each tick
// re-fetches unconditionally: the fetch is never skipped because a broadcast
// event was just applied, since it exists to mask missed or reordered events.
func (a *Agent) poll(done <-chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), a.interval)
			if err := a.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
				a.log.Warn("reconciliation fetch failed; keeping last known state", "trip_id", a.tripID, "error", err)
			}
			cancel()
		}
	}
}

// install replaces local state wholesale from a fetched snapshot.
// Caller must hold a.mu.
func (a *Agent) install(snap Snapshot) {
	a.trip = snap.Trip
	if a.trip.HourlyNotes == nil {
		a.trip.HourlyNotes = domain.NotesMap{}
	}
	a.activities = make([]domain.Activity, len(snap.Activities))
	copy(a.activities, snap.Activities)
}

// snapshotLocked deep-copies state. Caller must hold a.mu.
func (a *Agent) snapshotLocked() Snapshot {
	trip := a.trip
	trip.HourlyNotes = a.trip.HourlyNotes.Clone()
	trip.ActivityIDs = append([]uuid.UUID(nil), a.trip.ActivityIDs...)
	activities := make([]domain.Activity, len(a.activities))
	copy(activities, a.activities)
	return Snapshot{Trip: trip, Activities: activities}
}

// notifyLocked invokes the change callback, if any. Caller must hold a.mu.
func (a *Agent) notifyLocked() {
	if a.onChange != nil {
		a.onChange(a.snapshotLocked())
	}
}
