package data

import (
	"github.com/udisondev/spellchain/internal/element"
)

// SpellRecipeKey identifies a recipe by chain stage and element pair.
type SpellRecipeKey struct {
	Stage ChainStage
	From  element.Element
	To    element.Element
}

func (k SpellRecipeKey) String() string {
	return k.Stage.String() + ":" + k.From.String() + "->" + k.To.String()
}

// ChainEffectKey has the same shape as SpellRecipeKey but indexes a separate table.
type ChainEffectKey struct {
	Stage ChainStage
	From  element.Element
	To    element.Element
}

func (k ChainEffectKey) String() string {
	return k.Stage.String() + ":" + k.From.String() + "->" + k.To.String()
}

// RecipeKey converts k to the recipe key over the same tuple.
func (k ChainEffectKey) RecipeKey() SpellRecipeKey {
	return SpellRecipeKey{Stage: k.Stage, From: k.From, To: k.To}
}

// InjectionEffectKey identifies a minor injection bonus.
type InjectionEffectKey struct {
	Impact  ImpactType
	Element element.Element
}

func (k InjectionEffectKey) String() string {
	return k.Impact.String() + ":" + k.Element.String()
}
