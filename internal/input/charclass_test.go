package input

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		c    rune
		want Class
	}{
		{'a', Letter},
		{'Z', Letter},
		{'ư', Letter},
		{'0', Digit},
		{'9', Digit},
		{'(', Punctuation},
		{'\\', Punctuation},
		{'@', Punctuation},
		{'.', Punctuation},
		{'\'', Punctuation},
		{' ', Whitespace},
		{'\t', Whitespace},
		{'\n', Control},
		{0x1b, Control},
		{0x08, Control},
		{0x7f, Control},
	}
	for _, tc := range cases {
		if got := Classify(tc.c); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.c, got, tc.want)
		}
	}
}
