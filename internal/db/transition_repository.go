package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/spellchain/internal/translog"
)

// TransitionRow — строка transition_log.
type TransitionRow struct {
	RunID     string
	Actor     string
	GameTime  float64
	Kind      string
	Type      string
	Duration  float64
	Magnitude float64
	Reason    string
	Detail    string
}

// NewTransitionRow flattens a transition record.
func NewTransitionRow(runID string, rec translog.Record) TransitionRow {
	return TransitionRow{
		RunID:     runID,
		Actor:     rec.Actor,
		GameTime:  rec.At,
		Kind:      string(rec.Kind),
		Type:      rec.Type,
		Duration:  rec.Duration,
		Magnitude: rec.Magnitude,
		Reason:    rec.Reason,
		Detail:    rec.Detail,
	}
}

var transitionColumns = []string{
	"run_id", "actor", "game_time", "kind", "type", "duration", "magnitude", "reason", "detail",
}

// TransitionRepository пишет и читает transition_log.
type TransitionRepository struct {
	pool *pgxpool.Pool
}

// NewTransitionRepository creates a repository over pool.
func NewTransitionRepository(pool *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{pool: pool}
}

// InsertTransitions copies rows in one round trip.
func (r *TransitionRepository) InsertTransitions(ctx context.Context, rows []TransitionRow) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, 0, len(rows))
	for _, t := range rows {
		src = append(src, []any{t.RunID, t.Actor, t.GameTime, t.Kind, t.Type, t.Duration, t.Magnitude, t.Reason, t.Detail})
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"transition_log"}, transitionColumns, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("inserting %d transitions: %w", len(rows), err)
	}
	slog.Debug("saved transitions", "count", n)
	return nil
}

// ListByActor returns the transitions of actor in runID, oldest first.
// An empty kind matches every kind.
func (r *TransitionRepository) ListByActor(ctx context.Context, runID, actor, kind string) ([]TransitionRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, actor, game_time, kind, type, duration, magnitude, reason, detail
		FROM transition_log
		WHERE run_id = $1 AND actor = $2 AND ($3 = '' OR kind = $3)
		ORDER BY game_time, id`, runID, actor, kind)
	if err != nil {
		return nil, fmt.Errorf("querying transitions of %q: %w", actor, err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TransitionRow, error) {
		var t TransitionRow
		err := row.Scan(&t.RunID, &t.Actor, &t.GameTime, &t.Kind, &t.Type, &t.Duration, &t.Magnitude, &t.Reason, &t.Detail)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning transitions of %q: %w", actor, err)
	}
	return result, nil
}

// CountByReason returns the number of kind transitions keyed by reason.
func (r *TransitionRepository) CountByReason(ctx context.Context, runID, kind string) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT reason, count(*)
		FROM transition_log
		WHERE run_id = $1 AND kind = $2
		GROUP BY reason`, runID, kind)
	if err != nil {
		return nil, fmt.Errorf("counting %s transitions: %w", kind, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var reason string
		var n int64
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("scanning transition count: %w", err)
		}
		counts[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transition counts: %w", err)
	}
	return counts, nil
}
