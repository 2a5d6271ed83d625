package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/spellchain/internal/game/arena"
)

// DefaultTick is the fixed simulation step in game seconds.
const DefaultTick = 0.05

// clockEpsilon absorbs float drift when comparing step times to the clock.
const clockEpsilon = 1e-9

// Report summarises a scenario run.
type Report struct {
	Name     string
	Steps    int
	Commands int
	Failed   int
	EndAt    float64
	Final    *arena.Snapshot
}

// Runner plays a script against an arena on a fixed-step clock.
type Runner struct {
	// Tick is the game-time step; DefaultTick when zero.
	Tick float64
	// Pace sleeps this long between steps; zero runs as fast as possible.
	Pace time.Duration
}

// Spawn adds every scripted actor to a.
func Spawn(a *arena.Arena, s *Script) error {
	for _, spec := range s.Actors {
		if _, err := a.Spawn(spec); err != nil {
			return err
		}
	}
	return nil
}

// Run spawns the actors, then advances the clock from 0 to the script end,
// enqueueing due steps before each arena Step.
func (r Runner) Run(ctx context.Context, a *arena.Arena, s *Script) (Report, error) {
	tick := r.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	if err := Spawn(a, s); err != nil {
		return Report{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	rep := Report{Name: s.Name}
	end := s.End()
	next := 0

	slog.Info("scenario started",
		"name", s.Name,
		"actors", len(s.Actors),
		"steps", len(s.Steps),
		"end", end,
		"tick", tick)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		now := float64(i) * tick
		for next < len(s.Steps) && s.Steps[next].At <= now+clockEpsilon {
			cmd, err := s.Steps[next].Command()
			if err != nil {
				return rep, fmt.Errorf("step #%d: %w", next, err)
			}
			a.Enqueue(cmd)
			next++
		}

		for _, res := range a.Step(now) {
			rep.Commands++
			if res.Err != nil {
				rep.Failed++
				slog.Info("scenario command rejected",
					"at", now,
					"action", res.Command.Action,
					"actor", res.Command.Actor,
					"error", res.Err)
			}
		}
		rep.Steps++
		rep.EndAt = now

		if now >= end-clockEpsilon && next == len(s.Steps) {
			break
		}

		if r.Pace > 0 {
			select {
			case <-ctx.Done():
				return rep, ctx.Err()
			case <-time.After(r.Pace):
			}
		}
	}

	rep.Final = a.Snapshot()
	slog.Info("scenario finished",
		"name", s.Name,
		"steps", rep.Steps,
		"commands", rep.Commands,
		"failed", rep.Failed,
		"end_at", rep.EndAt)
	return rep, nil
}
