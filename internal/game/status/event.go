package status

import (
	"fmt"
	"strings"
)

// DebuffType is the kind of debuff carried by a Debuff event.
type DebuffType uint8

const (
	DebuffNone DebuffType = iota
	DefenseDown
	Vulnerability
	Weaken
)

var debuffNames = [...]string{
	DebuffNone:    "None",
	DefenseDown:   "DefenseDown",
	Vulnerability: "Vulnerability",
	Weaken:        "Weaken",
}

func (d DebuffType) String() string {
	if int(d) < len(debuffNames) {
		return debuffNames[d]
	}
	return fmt.Sprintf("DebuffType(%d)", uint8(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DebuffType) UnmarshalText(text []byte) error {
	for i, name := range debuffNames {
		if strings.EqualFold(name, string(text)) {
			*d = DebuffType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown debuff type %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (d DebuffType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// CrowdControlType is the requested crowd-control kind.
// Only Slow is applied as requested; every other type resolves to Stun or
// WeakStagger depending on the debuff window.
type CrowdControlType uint8

const (
	CrowdControlNone CrowdControlType = iota
	Stun
	Root
	Slow
	Knockdown
)

var crowdControlNames = [...]string{
	CrowdControlNone: "None",
	Stun:             "Stun",
	Root:             "Root",
	Slow:             "Slow",
	Knockdown:        "Knockdown",
}

func (c CrowdControlType) String() string {
	if int(c) < len(crowdControlNames) {
		return crowdControlNames[c]
	}
	return fmt.Sprintf("CrowdControlType(%d)", uint8(c))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CrowdControlType) UnmarshalText(text []byte) error {
	for i, name := range crowdControlNames {
		if strings.EqualFold(name, string(text)) {
			*c = CrowdControlType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown crowd control type %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (c CrowdControlType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// EventKind tags a status Event.
type EventKind uint8

const (
	KindUnknown EventKind = iota
	KindDebuff
	KindCrowdControl
	KindDamage
)

func (k EventKind) String() string {
	switch k {
	case KindDebuff:
		return "Debuff"
	case KindCrowdControl:
		return "CrowdControl"
	case KindDamage:
		return "Damage"
	default:
		return "Unknown"
	}
}

// Event is the single entry point payload for status receivers.
// At is the game-clock timestamp (seconds) of the application.
type Event struct {
	Kind         EventKind
	Debuff       DebuffType
	CrowdControl CrowdControlType
	Duration     float64
	Magnitude    float64
	Damage       float64
	IsUltimate   bool
	Source       string
	At           float64
}

// NewDebuff builds a Debuff event.
func NewDebuff(t DebuffType, duration, magnitude float64, source string, now float64) Event {
	return Event{Kind: KindDebuff, Debuff: t, Duration: duration, Magnitude: magnitude, Source: source, At: now}
}

// NewCrowdControl builds a CrowdControl event.
func NewCrowdControl(t CrowdControlType, duration, strength float64, source string, now float64) Event {
	return Event{Kind: KindCrowdControl, CrowdControl: t, Duration: duration, Magnitude: strength, Source: source, At: now}
}

// NewDamage builds a Damage event.
func NewDamage(amount float64, isUltimate bool, source string, now float64) Event {
	return Event{Kind: KindDamage, Damage: amount, IsUltimate: isUltimate, Source: source, At: now}
}
