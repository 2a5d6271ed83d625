package translog

import (
	"context"
	"log/slog"
	"sync"
)

// SlogRecorder writes every record as a single slog line.
type SlogRecorder struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogRecorder creates a recorder writing to logger (slog.Default() if nil) at level.
func NewSlogRecorder(logger *slog.Logger, level slog.Level) *SlogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRecorder{logger: logger, level: level}
}

// Record implements Recorder.
func (s *SlogRecorder) Record(rec Record) {
	s.logger.Log(context.Background(), s.level, "state transition",
		"actor", rec.Actor,
		"at", rec.At,
		"line", rec.String())
}

// Buffer keeps records in memory.
// Safe for concurrent use: the simulation writes while the debug API reads.
type Buffer struct {
	mu      sync.Mutex
	records []Record
	limit   int
}

// NewBuffer creates a buffer. limit <= 0 keeps everything; otherwise only the
// newest limit records are retained.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Record implements Recorder.
func (b *Buffer) Record(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, rec)
	if b.limit > 0 && len(b.records) > b.limit {
		drop := len(b.records) - b.limit
		b.records = append(b.records[:0], b.records[drop:]...)
	}
}

// Records returns a copy of the retained records.
func (b *Buffer) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Lines returns the retained records rendered with String().
func (b *Buffer) Lines() []string {
	recs := b.Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.String()
	}
	return out
}

// Filter returns retained records matching kind and type. Empty arguments match anything.
func (b *Buffer) Filter(kind Kind, typ string) []Record {
	var out []Record
	for _, r := range b.Records() {
		if kind != "" && r.Kind != kind {
			continue
		}
		if typ != "" && r.Type != typ {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Reset drops all retained records.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.records = b.records[:0]
	b.mu.Unlock()
}

// Fanout forwards each record to every non-nil recorder in order.
type Fanout []Recorder

// Record implements Recorder.
func (f Fanout) Record(rec Record) {
	for _, r := range f {
		if r != nil {
			r.Record(rec)
		}
	}
}

// WithActor wraps next so that records missing an actor are stamped with id.
func WithActor(id string, next Recorder) Recorder {
	next = OrDiscard(next)
	return RecorderFunc(func(rec Record) {
		if rec.Actor == "" {
			rec.Actor = id
		}
		next.Record(rec)
	})
}
