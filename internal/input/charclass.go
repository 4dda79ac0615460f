package input

import "unicode"

// Class tags a pressed character for the dispatcher. The classification is
// explicit and independently testable; the dispatcher switches on the tag
// instead of inlining character-set checks.
type Class int

const (
	// Letter is a plain letter handled by the transformation pipeline.
	Letter Class = iota
	// Digit is a numeric key.
	Digit
	// Punctuation is a symbol that dismisses the current word.
	Punctuation
	// Whitespace covers the word-boundary keys space and tab.
	Whitespace
	// Control covers enter, escape, delete and other control characters.
	Control
)

// String returns a human-readable name for the class.
func (c Class) String() string {
	switch c {
	case Letter:
		return "letter"
	case Digit:
		return "digit"
	case Punctuation:
		return "punctuation"
	case Whitespace:
		return "whitespace"
	case Control:
		return "control"
	default:
		return "unknown"
	}
}

// Symbols that end the current word when typed mid-composition.
const punctuationSet = "()[]{}<>/\\!@#$%^&*-_=+|~`,.;:'\"?"

// Classify tags a single pressed character.
func Classify(c rune) Class {
	switch {
	case c == ' ' || c == '\t':
		return Whitespace
	case c < 0x20 || c == 0x7f:
		return Control
	case c >= '0' && c <= '9':
		return Digit
	case runeInSet(c, punctuationSet):
		return Punctuation
	case unicode.IsLetter(c):
		return Letter
	case unicode.IsDigit(c):
		return Digit
	case unicode.IsSpace(c):
		return Whitespace
	default:
		return Punctuation
	}
}

func runeInSet(c rune, set string) bool {
	for _, s := range set {
		if c == s {
			return true
		}
	}
	return false
}
