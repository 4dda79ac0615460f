package telex

import (
	"strings"
	"unicode"
)

// Tone is a Vietnamese tone mark.
type Tone int

const (
	ToneNone  Tone = iota
	ToneAcute      // sắc
	ToneGrave      // huyền
	ToneHook       // hỏi
	ToneTilde      // ngã
	ToneDot        // nặng
)

// toneTable maps each unmarked vowel to its five marked forms, indexed by
// Tone-1.
var toneTable = map[rune][5]rune{
	'a': {'á', 'à', 'ả', 'ã', 'ạ'},
	'ă': {'ắ', 'ằ', 'ẳ', 'ẵ', 'ặ'},
	'â': {'ấ', 'ầ', 'ẩ', 'ẫ', 'ậ'},
	'e': {'é', 'è', 'ẻ', 'ẽ', 'ẹ'},
	'ê': {'ế', 'ề', 'ể', 'ễ', 'ệ'},
	'i': {'í', 'ì', 'ỉ', 'ĩ', 'ị'},
	'o': {'ó', 'ò', 'ỏ', 'õ', 'ọ'},
	'ô': {'ố', 'ồ', 'ổ', 'ỗ', 'ộ'},
	'ơ': {'ớ', 'ờ', 'ở', 'ỡ', 'ợ'},
	'u': {'ú', 'ù', 'ủ', 'ũ', 'ụ'},
	'ư': {'ứ', 'ừ', 'ử', 'ữ', 'ự'},
	'y': {'ý', 'ỳ', 'ỷ', 'ỹ', 'ỵ'},
}

// markedToBase maps every tone-marked vowel back to its unmarked form.
var markedToBase = map[rune]rune{}

// markedTone records which tone a marked vowel carries.
var markedTone = map[rune]Tone{}

func init() {
	for base, marked := range toneTable {
		for i, m := range marked {
			markedToBase[m] = base
			markedTone[m] = Tone(i + 1)
		}
	}
}

// applyTone marks a vowel with the given tone, preserving case.
func applyTone(v rune, t Tone) rune {
	if t == ToneNone {
		return v
	}
	lower := unicode.ToLower(v)
	marked, ok := toneTable[lower]
	if !ok {
		return v
	}
	out := marked[t-1]
	if unicode.IsUpper(v) {
		return unicode.ToUpper(out)
	}
	return out
}

// stripTone removes any tone mark from a vowel, preserving case.
func stripTone(v rune) (rune, Tone) {
	lower := unicode.ToLower(v)
	base, ok := markedToBase[lower]
	if !ok {
		return v, ToneNone
	}
	t := markedTone[lower]
	if unicode.IsUpper(v) {
		return unicode.ToUpper(base), t
	}
	return base, t
}

// isVowel reports whether the rune is a Vietnamese vowel, marked or not.
func isVowel(r rune) bool {
	lower := unicode.ToLower(r)
	if base, ok := markedToBase[lower]; ok {
		lower = base
	}
	switch lower {
	case 'a', 'ă', 'â', 'e', 'ê', 'i', 'o', 'ô', 'ơ', 'u', 'ư', 'y':
		return true
	}
	return false
}

// isModifiedVowel reports whether the rune carries a letter modification
// (circumflex, breve, or horn), ignoring tone marks.
func isModifiedVowel(r rune) bool {
	lower := unicode.ToLower(r)
	if base, ok := markedToBase[lower]; ok {
		lower = base
	}
	switch lower {
	case 'ă', 'â', 'ê', 'ô', 'ơ', 'ư':
		return true
	}
	return false
}

// vowelIndices returns the indices of the vowel cluster in letters,
// skipping the 'u' of "qu" and the 'i' of "gi" which act as part of the
// onset.
func vowelIndices(letters []rune) []int {
	var idx []int
	for i, r := range letters {
		if !isVowel(r) {
			continue
		}
		lower := unicode.ToLower(r)
		if lower == 'u' && i > 0 && unicode.ToLower(letters[i-1]) == 'q' {
			continue
		}
		if lower == 'i' && i > 0 && unicode.ToLower(letters[i-1]) == 'g' && i+1 < len(letters) && isVowel(letters[i+1]) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// tonePosition picks the vowel that carries the tone mark. Modified vowels
// (ê, ơ, ô, â, ă, ư) take priority; otherwise an open two-vowel cluster
// marks the first vowel and a closed one marks the last.
func tonePosition(letters []rune) int {
	vowels := vowelIndices(letters)
	if len(vowels) == 0 {
		return -1
	}
	// Rightmost modified vowel wins, with ê and ơ first in priority.
	for _, want := range []rune{'ê', 'ơ'} {
		for i := len(vowels) - 1; i >= 0; i-- {
			r := unicode.ToLower(letters[vowels[i]])
			if base, ok := markedToBase[r]; ok {
				r = base
			}
			if r == want {
				return vowels[i]
			}
		}
	}
	for i := len(vowels) - 1; i >= 0; i-- {
		if isModifiedVowel(letters[vowels[i]]) {
			return vowels[i]
		}
	}
	last := vowels[len(vowels)-1]
	openCluster := last == len(letters)-1
	if len(vowels) >= 2 && openCluster {
		return vowels[len(vowels)-2]
	}
	return last
}

// Valid Vietnamese syllable structure tables. Used by the boundary-time
// restore safeguard: a transformed word that fails validation and is not on
// the allow list is rewritten back to its raw keystrokes.
var (
	validOnsets = map[string]struct{}{
		"": {}, "b": {}, "c": {}, "ch": {}, "d": {}, "đ": {}, "g": {},
		"gh": {}, "gi": {}, "h": {}, "k": {}, "kh": {}, "l": {}, "m": {},
		"n": {}, "ng": {}, "ngh": {}, "nh": {}, "p": {}, "ph": {}, "qu": {},
		"r": {}, "s": {}, "t": {}, "th": {}, "tr": {}, "v": {}, "x": {},
	}
	validCodas = map[string]struct{}{
		"": {}, "c": {}, "ch": {}, "m": {}, "n": {}, "ng": {}, "nh": {},
		"p": {}, "t": {},
	}
	validNuclei = map[string]struct{}{
		"a": {}, "ă": {}, "â": {}, "e": {}, "ê": {}, "i": {}, "o": {},
		"ô": {}, "ơ": {}, "u": {}, "ư": {}, "y": {},
		"ai": {}, "ao": {}, "au": {}, "ay": {}, "âu": {}, "ây": {},
		"eo": {}, "êu": {}, "ia": {}, "iê": {}, "iu": {}, "oa": {},
		"oă": {}, "oe": {}, "oi": {}, "ôi": {}, "ơi": {}, "oo": {},
		"ua": {}, "uâ": {}, "uê": {}, "ui": {}, "uô": {}, "uơ": {},
		"uy": {}, "ưa": {}, "ươ": {}, "ưi": {}, "ưu": {}, "yê": {},
		"iêu": {}, "oai": {}, "oao": {}, "oay": {}, "oeo": {}, "uây": {},
		"uôi": {}, "uya": {}, "uyê": {}, "uyu": {}, "ươi": {}, "ươu": {},
		"yêu": {},
	}
)

// IsValidWord reports whether word is a well-formed Vietnamese syllable.
// Case and tone marks are ignored; structure (onset + nucleus + coda) is
// checked against the syllable tables.
func IsValidWord(word string) bool {
	if word == "" {
		return false
	}
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if !unicode.IsLetter(r) {
			return false
		}
		base, _ := stripTone(r)
		letters = append(letters, base)
	}

	// Split off the onset: leading non-vowels, plus qu/gi special cases.
	s := string(letters)
	onset := ""
	rest := s
	for i, r := range letters {
		if isVowel(r) {
			onset = string(letters[:i])
			rest = string(letters[i:])
			break
		}
		if i == len(letters)-1 {
			return false // no vowel at all
		}
	}
	if onset == "q" && strings.HasPrefix(rest, "u") {
		onset, rest = "qu", rest[len("u"):]
		if rest == "" {
			return false
		}
	}
	if onset == "g" && strings.HasPrefix(rest, "i") && len([]rune(rest)) > 1 {
		onset, rest = "gi", rest[len("i"):]
	}
	if _, ok := validOnsets[onset]; !ok {
		return false
	}

	// Split the nucleus from the coda: trailing non-vowels form the coda.
	restRunes := []rune(rest)
	codaStart := len(restRunes)
	for codaStart > 0 && !isVowel(restRunes[codaStart-1]) {
		codaStart--
	}
	nucleus := string(restRunes[:codaStart])
	coda := string(restRunes[codaStart:])
	if _, ok := validCodas[coda]; !ok {
		return false
	}
	_, ok := validNuclei[nucleus]
	return ok
}
