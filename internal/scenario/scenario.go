// Package scenario loads scripted fights from YAML and plays them against an arena.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/arena"
	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
)

//go:embed demo.yaml
var demoScript []byte

// Script — сценарий боя: актёры и шаги по игровому времени.
type Script struct {
	Name     string            `yaml:"name"`
	Duration float64           `yaml:"duration"`
	Actors   []arena.ActorSpec `yaml:"actors"`
	Steps    []Step            `yaml:"steps"`
}

// Step is one scripted input, enqueued once the clock reaches At.
type Step struct {
	At          float64         `yaml:"at" json:"at,omitempty"`
	Actor       string          `yaml:"actor" json:"actor,omitempty"`
	Action      arena.Action    `yaml:"action" json:"action,omitempty"`
	Slot        cast.Slot       `yaml:"slot" json:"slot,omitempty"`
	Element     element.Element `yaml:"element" json:"element,omitempty"`
	Target      *model.Vec3     `yaml:"target" json:"target,omitempty"`
	TargetActor string          `yaml:"target_actor" json:"target_actor,omitempty"`
	Reason      string          `yaml:"reason" json:"reason,omitempty"`
	Status      *StatusSpec     `yaml:"status" json:"status,omitempty"`
}

// StatusSpec describes a status event in a script.
type StatusSpec struct {
	Kind         string                  `yaml:"kind" json:"kind,omitempty"` // debuff | crowd_control | damage
	Debuff       status.DebuffType       `yaml:"debuff" json:"debuff,omitempty"`
	CrowdControl status.CrowdControlType `yaml:"crowd_control" json:"crowd_control,omitempty"`
	Duration     float64                 `yaml:"duration" json:"duration,omitempty"`
	Magnitude    float64                 `yaml:"magnitude" json:"magnitude,omitempty"`
	Damage       float64                 `yaml:"damage" json:"damage,omitempty"`
	Ultimate     bool                    `yaml:"ultimate" json:"ultimate,omitempty"`
	Source       string                  `yaml:"source" json:"source,omitempty"`
}

// Event converts the spec. At is stamped by the arena when the command runs.
func (s StatusSpec) Event() (status.Event, error) {
	source := s.Source
	if source == "" {
		source = "scenario"
	}
	switch strings.ToLower(strings.ReplaceAll(s.Kind, "-", "_")) {
	case "debuff":
		return status.NewDebuff(s.Debuff, s.Duration, s.Magnitude, source, 0), nil
	case "crowd_control", "cc":
		return status.NewCrowdControl(s.CrowdControl, s.Duration, s.Magnitude, source, 0), nil
	case "damage":
		return status.NewDamage(s.Damage, s.Ultimate, source, 0), nil
	default:
		return status.Event{}, fmt.Errorf("unknown status kind %q", s.Kind)
	}
}

// Command converts the step into an arena command.
func (s Step) Command() (arena.Command, error) {
	cmd := arena.Command{
		Action:      s.Action,
		Actor:       s.Actor,
		Slot:        s.Slot,
		Element:     s.Element,
		Target:      s.Target,
		TargetActor: s.TargetActor,
		Reason:      s.Reason,
	}
	if s.Action == arena.ActionMove && s.Target == nil {
		return arena.Command{}, errors.New("move step without target")
	}
	if s.Action == arena.ActionApplyStatus {
		if s.Status == nil {
			return arena.Command{}, errors.New("apply_status step without status")
		}
		ev, err := s.Status.Event()
		if err != nil {
			return arena.Command{}, err
		}
		cmd.Status = ev
	}
	return cmd, nil
}

// End returns the game time at which the script is finished.
func (s *Script) End() float64 {
	end := s.Duration
	for _, st := range s.Steps {
		end = max(end, st.At)
	}
	return end
}

// Validate reports every structural problem at once.
func (s *Script) Validate() error {
	var errs []error
	ids := make(map[string]struct{}, len(s.Actors))
	for i, a := range s.Actors {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("actor #%d: empty id", i))
			continue
		}
		if _, dup := ids[a.ID]; dup {
			errs = append(errs, fmt.Errorf("actor %q: duplicate id", a.ID))
		}
		ids[a.ID] = struct{}{}
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			errs = append(errs, fmt.Errorf("step #%d: negative time %.2f", i, st.At))
		}
		if st.Action == arena.ActionNone {
			errs = append(errs, fmt.Errorf("step #%d: missing action", i))
		}
		if _, ok := ids[st.Actor]; !ok {
			errs = append(errs, fmt.Errorf("step #%d: unknown actor %q", i, st.Actor))
		}
		if _, err := st.Command(); err != nil {
			errs = append(errs, fmt.Errorf("step #%d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Parse decodes and validates a script. Steps are ordered by time; steps with
// the same time keep their file order.
func Parse(raw []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	slices.SortStableFunc(s.Steps, func(a, b Step) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return &s, nil
}

// Load reads a script from path. An empty path returns the built-in demo.
func Load(path string) (*Script, error) {
	if path == "" {
		return Demo()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return Parse(raw)
}

// Demo returns the built-in debuff → crowd control → ultimate fight.
func Demo() (*Script, error) {
	return Parse(demoScript)
}
