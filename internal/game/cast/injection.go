package cast

import (
	"github.com/udisondev/spellchain/internal/data"
	"github.com/udisondev/spellchain/internal/element"
)

// InjectionState is the arm flag plus a queued consume waiting for target
// confirmation.
type InjectionState struct {
	armed bool

	queued        bool
	queuedImpact  data.ImpactType
	queuedElement element.Element
}

// Armed reports whether the next cast injects the front element.
func (s *InjectionState) Armed() bool { return s.armed }

// Queued reports whether a consume waits for confirmation.
func (s *InjectionState) Queued() bool { return s.queued }

// Toggle flips the arm flag and returns the new value.
func (s *InjectionState) Toggle() bool {
	s.armed = !s.armed
	return s.armed
}

// Prepare returns the element the next cast would inject.
func (s *InjectionState) Prepare(front element.Element) (element.Element, bool) {
	if (!s.armed && !s.queued) || !front.Valid() {
		return element.None, false
	}
	return front, true
}

// Queue disarms and remembers a pending consume.
func (s *InjectionState) Queue(impact data.ImpactType, e element.Element) {
	s.armed = false
	s.queued = true
	s.queuedImpact = impact
	s.queuedElement = e
}

// Consumed disarms after an element was injected.
func (s *InjectionState) Consumed() {
	s.armed = false
	s.clearQueued()
}

// CancelQueued re-arms if a consume was queued. Returns false when nothing was queued.
func (s *InjectionState) CancelQueued() bool {
	if !s.queued {
		return false
	}
	s.armed = true
	s.clearQueued()
	return true
}

// Reset disarms and drops any queued consume.
func (s *InjectionState) Reset() {
	s.armed = false
	s.clearQueued()
}

func (s *InjectionState) clearQueued() {
	s.queued = false
	s.queuedImpact = data.ImpactNone
	s.queuedElement = element.None
}
