package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/translog"
)

const (
	DefaultBatchSize     = 256
	DefaultFlushInterval = 500 * time.Millisecond
	DefaultQueueSize     = 4096
	finalFlushTimeout    = 5 * time.Second
)

// CastStore persists cast rows.
type CastStore interface {
	InsertCasts(ctx context.Context, rows []CastRow) error
}

// TransitionStore persists transition rows.
type TransitionStore interface {
	InsertTransitions(ctx context.Context, rows []TransitionRow) error
}

// WriterConfig configures the async writer.
type WriterConfig struct {
	RunID         string
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
	// MaxPerSecond caps accepted rows; zero or negative means unlimited.
	MaxPerSecond float64
}

func (c WriterConfig) withDefaults() WriterConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// WriterStats — счётчики writer'а.
type WriterStats struct {
	Accepted uint64
	Dropped  uint64
	Written  uint64
	Failed   uint64
}

type entry struct {
	cast       *CastRow
	transition *TransitionRow
}

// Writer buffers casts and transition records and writes them in batches from
// its own goroutine. Producers never block: rows above the rate budget or
// beyond a full queue are dropped and counted.
type Writer struct {
	cfg         WriterConfig
	casts       CastStore
	transitions TransitionStore
	queue       chan entry
	limiter     *rate.Limiter

	accepted atomic.Uint64
	dropped  atomic.Uint64
	written  atomic.Uint64
	failed   atomic.Uint64
}

// NewWriter creates a writer. Run must be started for rows to reach the stores.
func NewWriter(cfg WriterConfig, casts CastStore, transitions TransitionStore) *Writer {
	cfg = cfg.withDefaults()

	limit := rate.Inf
	burst := 0
	if cfg.MaxPerSecond > 0 {
		limit = rate.Limit(cfg.MaxPerSecond)
		burst = max(1, int(cfg.MaxPerSecond/10))
	}

	return &Writer{
		cfg:         cfg,
		casts:       casts,
		transitions: transitions,
		queue:       make(chan entry, cfg.QueueSize),
		limiter:     rate.NewLimiter(limit, burst),
	}
}

// OnCastEffectResolved implements cast.Sink.
func (w *Writer) OnCastEffectResolved(exec *cast.Execution, inj cast.InjectionResolution, ch cast.ChainResolution) {
	row := NewCastRow(w.cfg.RunID, exec, inj, ch)
	w.offer(entry{cast: &row})
}

// Record implements translog.Recorder.
func (w *Writer) Record(rec translog.Record) {
	row := NewTransitionRow(w.cfg.RunID, rec)
	w.offer(entry{transition: &row})
}

func (w *Writer) offer(e entry) {
	if !w.limiter.Allow() {
		w.dropped.Add(1)
		return
	}
	select {
	case w.queue <- e:
		w.accepted.Add(1)
	default:
		w.dropped.Add(1)
	}
}

// Stats returns a copy of the counters.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Accepted: w.accepted.Load(),
		Dropped:  w.dropped.Load(),
		Written:  w.written.Load(),
		Failed:   w.failed.Load(),
	}
}

// Run flushes batches until ctx is cancelled, then drains the queue and
// flushes once more with a bounded timeout.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	slog.Info("telemetry writer started",
		"run", w.cfg.RunID,
		"batch", w.cfg.BatchSize,
		"interval", w.cfg.FlushInterval,
		"max_per_second", w.cfg.MaxPerSecond)

	var b batch
	for {
		select {
		case <-ctx.Done():
			w.drain(&b)
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			w.flush(flushCtx, &b)
			cancel()
			st := w.Stats()
			slog.Info("telemetry writer stopped",
				"written", st.Written,
				"dropped", st.Dropped,
				"failed", st.Failed)
			return nil

		case e := <-w.queue:
			b.add(e)
			if b.len() >= w.cfg.BatchSize {
				w.flush(ctx, &b)
			}

		case <-ticker.C:
			w.flush(ctx, &b)
		}
	}
}

func (w *Writer) drain(b *batch) {
	for {
		select {
		case e := <-w.queue:
			b.add(e)
		default:
			return
		}
	}
}

func (w *Writer) flush(ctx context.Context, b *batch) {
	if len(b.casts) > 0 {
		if err := w.casts.InsertCasts(ctx, b.casts); err != nil {
			w.failed.Add(uint64(len(b.casts)))
			slog.Error("writing casts", "count", len(b.casts), "error", err)
		} else {
			w.written.Add(uint64(len(b.casts)))
		}
	}
	if len(b.transitions) > 0 {
		if err := w.transitions.InsertTransitions(ctx, b.transitions); err != nil {
			w.failed.Add(uint64(len(b.transitions)))
			slog.Error("writing transitions", "count", len(b.transitions), "error", err)
		} else {
			w.written.Add(uint64(len(b.transitions)))
		}
	}
	b.reset()
}

type batch struct {
	casts       []CastRow
	transitions []TransitionRow
}

func (b *batch) add(e entry) {
	if e.cast != nil {
		b.casts = append(b.casts, *e.cast)
	}
	if e.transition != nil {
		b.transitions = append(b.transitions, *e.transition)
	}
}

func (b *batch) len() int { return len(b.casts) + len(b.transitions) }

func (b *batch) reset() {
	b.casts = nil
	b.transitions = nil
}
