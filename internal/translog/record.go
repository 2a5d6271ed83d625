package translog

import (
	"fmt"
	"strings"
)

// Kind classifies a state transition.
type Kind string

const (
	KindEnter   Kind = "enter"
	KindExpire  Kind = "expire"
	KindBlocked Kind = "blocked"
	KindConsume Kind = "consume"
	KindSlot    Kind = "slot"
	KindChain   Kind = "chain"
	KindCast    Kind = "cast"
)

// Record is one line of the transition log.
// Actor and At are carried for routing and storage; String() renders only the
// canonical key=value shape.
type Record struct {
	Actor     string
	At        float64
	Kind      Kind
	Type      string
	Duration  float64
	Magnitude float64
	Reason    string
	Detail    string
}

// String renders the record as
// "kind=<Kind> type=<Type> duration=<d> magnitude=<m> reason=<r>".
// A non-empty Detail is appended as "detail=<...>".
func (r Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "kind=%s type=%s duration=%.2f magnitude=%.2f reason=%s",
		r.Kind, orDash(r.Type), r.Duration, r.Magnitude, orDash(r.Reason))
	if r.Detail != "" {
		sb.WriteString(" detail=")
		sb.WriteString(r.Detail)
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Recorder receives transition records.
type Recorder interface {
	Record(rec Record)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(rec Record)

// Record calls f(rec).
func (f RecorderFunc) Record(rec Record) { f(rec) }

// Discard drops every record.
var Discard Recorder = RecorderFunc(func(Record) {})

// OrDiscard returns r, or Discard if r is nil.
func OrDiscard(r Recorder) Recorder {
	if r == nil {
		return Discard
	}
	return r
}
