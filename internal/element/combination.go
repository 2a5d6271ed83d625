package element

// Combination is the unordered pairing of two elements.
type Combination uint8

const (
	CombinationNone Combination = iota
	CombinationRR
	CombinationBB
	CombinationYY
	CombinationRB
	CombinationRY
	CombinationBY
)

var combinationNames = [...]string{
	CombinationNone: "None",
	CombinationRR:   "RR",
	CombinationBB:   "BB",
	CombinationYY:   "YY",
	CombinationRB:   "RB",
	CombinationRY:   "RY",
	CombinationBY:   "BY",
}

func (c Combination) String() string {
	if int(c) < len(combinationNames) {
		return combinationNames[c]
	}
	return "Invalid"
}

type pair struct{ a, b Element }

var combinations = map[pair]Combination{
	{R, R}: CombinationRR,
	{B, B}: CombinationBB,
	{Y, Y}: CombinationYY,
	{R, B}: CombinationRB,
	{R, Y}: CombinationRY,
	{B, Y}: CombinationBY,
}

// TryResolve pairs two elements regardless of order.
// Returns CombinationNone, false if either operand is None or not a known element.
func TryResolve(first, second Element) (Combination, bool) {
	if !first.Valid() || !second.Valid() {
		return CombinationNone, false
	}
	if first > second {
		first, second = second, first
	}
	c, ok := combinations[pair{first, second}]
	if !ok {
		return CombinationNone, false
	}
	return c, true
}

// TryResolveState pairs the two slots of a state.
func TryResolveState(s SlotState) (Combination, bool) {
	return TryResolve(s.A, s.B)
}
