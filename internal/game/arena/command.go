package arena

import (
	"fmt"
	"strings"

	"github.com/udisondev/spellchain/internal/element"
	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/game/status"
	"github.com/udisondev/spellchain/internal/model"
)

// Action — тип команды в очереди арены.
type Action uint8

const (
	ActionNone Action = iota
	ActionParry
	ActionToggleArm
	ActionCast
	ActionConfirm
	ActionCancel
	ActionApplyStatus
	ActionMove
)

var actionNames = [...]string{
	ActionNone:        "None",
	ActionParry:       "Parry",
	ActionToggleArm:   "ToggleArm",
	ActionCast:        "Cast",
	ActionConfirm:     "Confirm",
	ActionCancel:      "Cancel",
	ActionApplyStatus: "ApplyStatus",
	ActionMove:        "Move",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", a)
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(text []byte) error {
	s := strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(string(text)))
	for i, name := range actionNames {
		if strings.EqualFold(name, s) {
			*a = Action(i)
			return nil
		}
	}
	return fmt.Errorf("unknown arena action %q", text)
}

// Command is one queued input. Fields irrelevant to Action are ignored.
//
// Target resolution for Cast/Confirm: TargetActor position if that actor
// exists, else Target, else the actor's own position. Move places the actor
// at Target.
type Command struct {
	Action      Action
	Actor       string
	Slot        cast.Slot
	Element     element.Element
	Target      *model.Vec3
	TargetActor string
	Status      status.Event
	Reason      string
}

// CommandResult is the outcome of one command executed by Step.
type CommandResult struct {
	Command Command
	Cast    cast.Result
	Err     error
}
