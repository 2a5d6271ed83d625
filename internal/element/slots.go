package element

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/spellchain/internal/translog"
)

// ConfirmReasonPrefix tags the only operations allowed while a SlotStore is locked.
const ConfirmReasonPrefix = "confirm"

// SlotState is a snapshot of the two element slots.
// Invariant: B != None implies A != None.
type SlotState struct {
	A Element
	B Element
}

// String renders the state as "[A,B]".
func (s SlotState) String() string {
	return fmt.Sprintf("[%s,%s]", s.A, s.B)
}

// Front returns the oldest stored element.
func (s SlotState) Front() Element { return s.A }

// Empty reports whether no element is stored.
func (s SlotState) Empty() bool { return s.A == None }

// UpdateResult is the before/after pair of a slot mutation.
type UpdateResult struct {
	Before SlotState
	After  SlotState
	Reason string
}

// Changed reports whether the mutation changed the state.
func (r UpdateResult) Changed() bool { return r.Before != r.After }

// SlotStore is a two-slot element register with push-evict semantics.
// Owned by a single actor; not safe for concurrent use.
type SlotStore struct {
	a, b   Element
	locked bool
	rec    translog.Recorder
}

// NewSlotStore creates an empty store. rec may be nil.
func NewSlotStore(rec translog.Recorder) *SlotStore {
	return &SlotStore{rec: translog.OrDiscard(rec)}
}

// State returns the current snapshot.
func (s *SlotStore) State() SlotState {
	return SlotState{A: s.a, B: s.b}
}

// Locked reports whether Save/TryConsumeFront are restricted to confirm reasons.
func (s *SlotStore) Locked() bool { return s.locked }

// SetLocked toggles the pending-confirmation lock.
func (s *SlotStore) SetLocked(locked bool) { s.locked = locked }

// Save stores e:
//   - A empty → A = e
//   - B empty → B = e
//   - both full → A = B, B = e (oldest evicted)
//
// Save(None) and a locked store without a confirm reason are no-ops that still
// report a consistent before/after pair.
func (s *SlotStore) Save(e Element, reason string) UpdateResult {
	before := s.State()
	if !e.Valid() {
		return s.emit("save", UpdateResult{Before: before, After: before, Reason: reason})
	}
	if s.blocked(reason) {
		return s.emitBlocked("save", UpdateResult{Before: before, After: before, Reason: reason})
	}

	switch {
	case s.a == None:
		s.a = e
	case s.b == None:
		s.b = e
	default:
		s.a = s.b
		s.b = e
	}

	return s.emit("save", UpdateResult{Before: before, After: s.State(), Reason: reason})
}

// TryConsumeFront pops A and shifts B forward.
// Returns None, false when the store is empty or locked for reason.
func (s *SlotStore) TryConsumeFront(reason string) (Element, UpdateResult, bool) {
	before := s.State()
	if s.a == None {
		return None, s.emit("consume", UpdateResult{Before: before, After: before, Reason: reason}), false
	}
	if s.blocked(reason) {
		return None, s.emitBlocked("consume", UpdateResult{Before: before, After: before, Reason: reason}), false
	}

	consumed := s.a
	s.a = s.b
	s.b = None

	return consumed, s.emit("consume", UpdateResult{Before: before, After: s.State(), Reason: reason}), true
}

// Reset clears both slots. Reset is never blocked by the lock.
func (s *SlotStore) Reset(reason string) UpdateResult {
	before := s.State()
	s.a = None
	s.b = None
	return s.emit("reset", UpdateResult{Before: before, After: s.State(), Reason: reason})
}

func (s *SlotStore) blocked(reason string) bool {
	return s.locked && !strings.HasPrefix(reason, ConfirmReasonPrefix)
}

func (s *SlotStore) emit(op string, res UpdateResult) UpdateResult {
	s.rec.Record(translog.Record{
		Kind:   translog.KindSlot,
		Type:   op,
		Reason: res.Reason,
		Detail: res.Before.String() + "->" + res.After.String(),
	})
	return res
}

func (s *SlotStore) emitBlocked(op string, res UpdateResult) UpdateResult {
	slog.Debug("element slot locked", "op", op, "reason", res.Reason, "state", res.Before)
	s.rec.Record(translog.Record{
		Kind:   translog.KindBlocked,
		Type:   "slot:" + op,
		Reason: "slot_locked",
		Detail: res.Reason,
	})
	return res
}
