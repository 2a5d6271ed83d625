package element

import (
	"fmt"
	"strings"
)

// Element is an element acquired by parrying. None marks an empty slot.
// Ordinal order R < B < Y is used when pairing.
type Element uint8

const (
	None Element = iota
	R
	B
	Y
)

var elementNames = [...]string{
	None: "None",
	R:    "R",
	B:    "B",
	Y:    "Y",
}

// String returns the element name.
func (e Element) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return fmt.Sprintf("Element(%d)", uint8(e))
}

// Valid reports whether e is one of R, B, Y.
func (e Element) Valid() bool {
	return e >= R && e <= Y
}

// Parse converts a name ("R", "b", "none", "") to an Element.
func Parse(s string) (Element, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return None, nil
	case "R":
		return R, nil
	case "B":
		return B, nil
	case "Y":
		return Y, nil
	default:
		return None, fmt.Errorf("unknown element %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by the YAML loaders).
func (e *Element) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}
