// Package telex is the transformation oracle: a pure function from the raw
// typing buffer to the rendered Vietnamese word.
//
// The engine depends only on the Transformer contract. Transform is
// deterministic, side-effect free, and reports when a key had the reverse
// effect of stripping a previously applied mark — the signal the engine
// uses to stop tracking the word.
package telex

import (
	"errors"
	"unicode"
)

// Result is the outcome of applying the oracle to a typing buffer.
type Result struct {
	// Output is the rendered word.
	Output string

	// ToneMarkRemoved reports that the last key stripped a tone mark
	// that an earlier key had applied.
	ToneMarkRemoved bool

	// LetterModificationRemoved reports that the last key stripped a
	// letter modification (circumflex, breve, horn, or đ stroke).
	LetterModificationRemoved bool
}

// Transformer converts a raw typing buffer into a rendered word.
// An error means the buffer yields no transformation; callers leave their
// state unchanged and do not resend.
type Transformer interface {
	Transform(buffer []rune) (Result, error)
}

// ErrEmptyBuffer is returned when there is nothing to transform.
var ErrEmptyBuffer = errors.New("telex: empty typing buffer")

// Telex implements the Telex typing method: doubled vowels for circumflex,
// w for breve/horn, dd for đ, and s/f/r/x/j for tone marks.
type Telex struct{}

// New creates a Telex transformer.
func New() *Telex { return &Telex{} }

// Transform renders the buffer. Repeating a modifier key reverts its
// effect and emits the key literally, reported through the Result flags.
func (Telex) Transform(buffer []rune) (Result, error) {
	if len(buffer) == 0 {
		return Result{}, ErrEmptyBuffer
	}
	w := &word{}
	var res Result
	for _, c := range buffer {
		w.feed(c, &res)
	}
	res.Output = w.render()
	return res, nil
}

// word is the in-progress syllable: letters carry letter modifications but
// no tone; the tone is applied at render time so it follows the cluster as
// it grows.
type word struct {
	letters []rune
	tone    Tone
}

func (w *word) feed(c rune, res *Result) {
	switch unicode.ToLower(c) {
	case 's':
		w.feedTone(c, ToneAcute, res)
	case 'f':
		w.feedTone(c, ToneGrave, res)
	case 'r':
		w.feedTone(c, ToneHook, res)
	case 'x':
		w.feedTone(c, ToneTilde, res)
	case 'j':
		w.feedTone(c, ToneDot, res)
	case 'z':
		if w.tone != ToneNone {
			w.tone = ToneNone
			res.ToneMarkRemoved = true
		} else {
			w.letters = append(w.letters, c)
		}
	case 'w':
		w.feedHorn(c, res)
	case 'a', 'e', 'o':
		w.feedCircumflex(c, res)
	case 'd':
		w.feedStroke(c, res)
	default:
		w.letters = append(w.letters, c)
	}
}

func (w *word) feedTone(c rune, t Tone, res *Result) {
	if len(vowelIndices(w.letters)) == 0 {
		w.letters = append(w.letters, c)
		return
	}
	if w.tone == t {
		// Second press of the same tone key reverts the mark and
		// falls through as a literal letter.
		w.tone = ToneNone
		w.letters = append(w.letters, c)
		res.ToneMarkRemoved = true
		return
	}
	w.tone = t
}

// trailingVowelRun returns the index range [start, end) of the vowel run at
// the end of the word. Modifier keys only reach back across vowels, so
// "bana" stays "bana" while "hoaa" becomes "hoâ".
func (w *word) trailingVowelRun() (int, int) {
	end := len(w.letters)
	start := end
	for start > 0 && isVowel(w.letters[start-1]) {
		start--
	}
	return start, end
}

var circumflexFor = map[rune]rune{'a': 'â', 'e': 'ê', 'o': 'ô'}

func (w *word) feedCircumflex(c rune, res *Result) {
	lc := unicode.ToLower(c)
	target := circumflexFor[lc]
	start, end := w.trailingVowelRun()
	for i := end - 1; i >= start; i-- {
		switch unicode.ToLower(w.letters[i]) {
		case lc:
			w.letters[i] = preserveCase(w.letters[i], target)
			return
		case target:
			// Doubling again reverts the circumflex.
			w.letters[i] = preserveCase(w.letters[i], lc)
			w.letters = append(w.letters, c)
			res.LetterModificationRemoved = true
			return
		}
	}
	w.letters = append(w.letters, c)
}

var hornFor = map[rune]rune{'u': 'ư', 'o': 'ơ', 'a': 'ă'}
var hornBack = map[rune]rune{'ư': 'u', 'ơ': 'o', 'ă': 'a'}

func (w *word) feedHorn(c rune, res *Result) {
	start, end := w.trailingVowelRun()

	// Revert first: a second w strips the existing horn or breve.
	for i := end - 1; i >= start; i-- {
		if base, ok := hornBack[unicode.ToLower(w.letters[i])]; ok {
			if i > start {
				if prev, ok2 := hornBack[unicode.ToLower(w.letters[i-1])]; ok2 {
					w.letters[i-1] = preserveCase(w.letters[i-1], prev)
				}
			}
			w.letters[i] = preserveCase(w.letters[i], base)
			w.letters = append(w.letters, c)
			res.LetterModificationRemoved = true
			return
		}
	}

	// "uo" modifies as a pair into "ươ".
	for i := end - 1; i > start; i-- {
		if unicode.ToLower(w.letters[i]) == 'o' && unicode.ToLower(w.letters[i-1]) == 'u' {
			w.letters[i-1] = preserveCase(w.letters[i-1], 'ư')
			w.letters[i] = preserveCase(w.letters[i], 'ơ')
			return
		}
	}

	for i := end - 1; i >= start; i-- {
		if target, ok := hornFor[unicode.ToLower(w.letters[i])]; ok {
			w.letters[i] = preserveCase(w.letters[i], target)
			return
		}
	}

	// Standalone w types ư.
	w.letters = append(w.letters, preserveCase(c, 'ư'))
}

func (w *word) feedStroke(c rune, res *Result) {
	if len(w.letters) > 0 {
		switch unicode.ToLower(w.letters[0]) {
		case 'd':
			w.letters[0] = preserveCase(w.letters[0], 'đ')
			return
		case 'đ':
			w.letters[0] = preserveCase(w.letters[0], 'd')
			w.letters = append(w.letters, c)
			res.LetterModificationRemoved = true
			return
		}
	}
	w.letters = append(w.letters, c)
}

func (w *word) render() string {
	if len(w.letters) == 0 {
		return ""
	}
	out := make([]rune, len(w.letters))
	copy(out, w.letters)
	if w.tone != ToneNone {
		if pos := tonePosition(out); pos >= 0 {
			out[pos] = applyTone(out[pos], w.tone)
		}
	}
	return string(out)
}

// preserveCase maps src onto the lowercase target letter, keeping src's
// case.
func preserveCase(src, target rune) rune {
	if unicode.IsUpper(src) {
		return unicode.ToUpper(target)
	}
	return target
}
