package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/spellchain/internal/game/cast"
)

// CastRow — строка cast_log.
type CastRow struct {
	RunID        string
	Caster       string
	Slot         string
	BaseSpell    string
	Spell        string
	Impact       string
	Delivery     string
	Injected     string
	Combination  string
	ChainKey     *string
	RecipeHit    bool
	InjectionHit bool
	ChainHit     bool
	Enhanced     bool
	Damage       float64
	GameTime     float64
}

// NewCastRow flattens a resolved cast.
func NewCastRow(runID string, exec *cast.Execution, inj cast.InjectionResolution, ch cast.ChainResolution) CastRow {
	row := CastRow{
		RunID:        runID,
		Caster:       exec.CasterID,
		Slot:         exec.Slot.String(),
		BaseSpell:    exec.BaseSpellID,
		Spell:        exec.SpellID,
		Impact:       exec.Impact.String(),
		Delivery:     exec.Delivery.String(),
		Injected:     exec.InjectedElement.String(),
		Combination:  exec.Combination.String(),
		RecipeHit:    exec.RecipeHit,
		InjectionHit: inj.Hit,
		ChainHit:     ch.Hit,
		Enhanced:     exec.Enhanced,
		Damage:       exec.Damage,
		GameTime:     exec.At,
	}
	if exec.HasChainKey {
		key := exec.ChainKey.String()
		row.ChainKey = &key
	}
	return row
}

var castColumns = []string{
	"run_id", "caster", "slot", "base_spell", "spell", "impact", "delivery",
	"injected", "combination", "chain_key", "recipe_hit", "injection_hit",
	"chain_hit", "enhanced", "damage", "game_time",
}

// CastRepository пишет и читает cast_log.
type CastRepository struct {
	pool *pgxpool.Pool
}

// NewCastRepository creates a repository over pool.
func NewCastRepository(pool *pgxpool.Pool) *CastRepository {
	return &CastRepository{pool: pool}
}

// InsertCasts copies rows in one round trip.
func (r *CastRepository) InsertCasts(ctx context.Context, rows []CastRow) error {
	if len(rows) == 0 {
		return nil
	}

	src := make([][]any, 0, len(rows))
	for _, c := range rows {
		src = append(src, []any{
			c.RunID, c.Caster, c.Slot, c.BaseSpell, c.Spell, c.Impact, c.Delivery,
			c.Injected, c.Combination, c.ChainKey, c.RecipeHit, c.InjectionHit,
			c.ChainHit, c.Enhanced, c.Damage, c.GameTime,
		})
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"cast_log"}, castColumns, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("inserting %d casts: %w", len(rows), err)
	}
	slog.Debug("saved casts", "count", n)
	return nil
}

// ListByRun returns the casts of runID in game-time order.
func (r *CastRepository) ListByRun(ctx context.Context, runID string) ([]CastRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, caster, slot, base_spell, spell, impact, delivery,
		       injected, combination, chain_key, recipe_hit, injection_hit,
		       chain_hit, enhanced, damage, game_time
		FROM cast_log
		WHERE run_id = $1
		ORDER BY game_time, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying casts of run %q: %w", runID, err)
	}
	defer rows.Close()

	var result []CastRow
	for rows.Next() {
		var c CastRow
		if err := rows.Scan(
			&c.RunID, &c.Caster, &c.Slot, &c.BaseSpell, &c.Spell, &c.Impact, &c.Delivery,
			&c.Injected, &c.Combination, &c.ChainKey, &c.RecipeHit, &c.InjectionHit,
			&c.ChainHit, &c.Enhanced, &c.Damage, &c.GameTime,
		); err != nil {
			return nil, fmt.Errorf("scanning cast row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cast rows: %w", err)
	}
	return result, nil
}

// ChainHitRate returns hits and lookups of chain effects for runID.
func (r *CastRepository) ChainHitRate(ctx context.Context, runID string) (hits, lookups int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE chain_hit), count(*)
		FROM cast_log
		WHERE run_id = $1 AND chain_key IS NOT NULL`, runID,
	).Scan(&hits, &lookups)
	if err != nil {
		return 0, 0, fmt.Errorf("querying chain hit rate of run %q: %w", runID, err)
	}
	return hits, lookups, nil
}
