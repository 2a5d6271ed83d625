package cast

import (
	"log/slog"

	"github.com/udisondev/spellchain/internal/data"
)

// Sink receives every resolved cast.
type Sink interface {
	OnCastEffectResolved(exec *Execution, injection InjectionResolution, chain ChainResolution)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(exec *Execution, injection InjectionResolution, chain ChainResolution)

// OnCastEffectResolved implements Sink.
func (f SinkFunc) OnCastEffectResolved(exec *Execution, injection InjectionResolution, chain ChainResolution) {
	f(exec, injection, chain)
}

// CompositeSink fans out to every non-nil sink in order. An empty composite is valid.
type CompositeSink []Sink

// OnCastEffectResolved implements Sink.
func (c CompositeSink) OnCastEffectResolved(exec *Execution, injection InjectionResolution, chain ChainResolution) {
	for _, s := range c {
		if s != nil {
			s.OnCastEffectResolved(exec, injection, chain)
		}
	}
}

// LogSink writes a debug line for casts where an injection or chain effect resolved.
type LogSink struct {
	Logger *slog.Logger
}

// OnCastEffectResolved implements Sink.
func (s LogSink) OnCastEffectResolved(exec *Execution, injection InjectionResolution, chain ChainResolution) {
	if !injection.Hit && !chain.Hit {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("cast effect resolved",
		"caster", exec.CasterID,
		"spell", exec.SpellID,
		"impact", exec.Impact,
		"injected", exec.InjectedElement,
		"combo", exec.Combination,
		"injection_hit", injection.Hit,
		"injection_effect", injection.Entry.EffectType,
		"chain_hit", chain.Hit,
		"chain_effect", chain.Entry.EffectType,
		"allow_ultimate", chain.Entry.AllowChainUltimate,
		"enhanced", exec.Enhanced)
}

// ChainEffectFunc is invoked only for casts whose chain lookup hit.
type ChainEffectFunc func(exec *Execution, entry data.ChainEffectEntry)

// OnCastEffectResolved implements Sink.
func (f ChainEffectFunc) OnCastEffectResolved(exec *Execution, _ InjectionResolution, chain ChainResolution) {
	if chain.Hit {
		f(exec, chain.Entry)
	}
}
