package telex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transform(t *testing.T, raw string) Result {
	t.Helper()
	res, err := New().Transform([]rune(raw))
	require.NoError(t, err)
	return res
}

func TestTransformWords(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"vieetj", "việt"},
		{"tieengs", "tiếng"},
		{"nguowif", "người"},
		{"ddeens", "đến"},
		{"truowngf", "trường"},
		{"hoas", "hóa"},
		{"toans", "toán"},
		{"tuw", "tư"},
		{"chuaanr", "chuẩn"},
		{"quas", "quá"},
		{"gif", "gì"},
		{"thuyr", "thủy"},
		{"mej", "mẹ"},
		{"xanh", "xanh"},
		{"banana", "banana"},
	}
	for _, tc := range cases {
		res := transform(t, tc.raw)
		assert.Equal(t, tc.want, res.Output, "raw %q", tc.raw)
		assert.False(t, res.ToneMarkRemoved, "raw %q", tc.raw)
		assert.False(t, res.LetterModificationRemoved, "raw %q", tc.raw)
	}
}

func TestTransformPreservesCase(t *testing.T) {
	assert.Equal(t, "Việt", transform(t, "Vieetj").Output)
	assert.Equal(t, "ĐÂU", transform(t, "DDAAU").Output)
}

func TestToneRevert(t *testing.T) {
	res := transform(t, "ass")
	assert.Equal(t, "as", res.Output)
	assert.True(t, res.ToneMarkRemoved)

	res = transform(t, "az")
	assert.Equal(t, "az", res.Output, "z with no tone is a literal")
	assert.False(t, res.ToneMarkRemoved)

	res = transform(t, "asz")
	assert.Equal(t, "a", res.Output, "z strips the tone")
	assert.True(t, res.ToneMarkRemoved)
}

func TestLetterModificationRevert(t *testing.T) {
	res := transform(t, "aaa")
	assert.Equal(t, "aa", res.Output)
	assert.True(t, res.LetterModificationRemoved)

	res = transform(t, "ddd")
	assert.Equal(t, "dd", res.Output)
	assert.True(t, res.LetterModificationRemoved)

	res = transform(t, "aww")
	assert.Equal(t, "aw", res.Output)
	assert.True(t, res.LetterModificationRemoved)
}

func TestToneKeyWithoutVowelIsLiteral(t *testing.T) {
	res := transform(t, "sf")
	assert.Equal(t, "sf", res.Output)
	assert.False(t, res.ToneMarkRemoved)
}

func TestToneFollowsGrowingCluster(t *testing.T) {
	// The mark moves as the cluster grows: "hoa" + s marks the o, adding
	// a coda moves it onto the a.
	assert.Equal(t, "hóa", transform(t, "hoas").Output)
	assert.Equal(t, "hoán", transform(t, "hoasn").Output)
}

func TestEmptyBuffer(t *testing.T) {
	_, err := New().Transform(nil)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestIsValidWord(t *testing.T) {
	valid := []string{"việt", "tiếng", "người", "đến", "trường", "hóa",
		"quá", "gì", "xanh", "ưu", "oanh", "nghiêng", "a"}
	for _, w := range valid {
		assert.True(t, IsValidWord(w), "expected %q valid", w)
	}

	invalid := []string{"", "btw", "zzz", "btư", "qz", "hellow", "đz",
		"ngz", "v1t"}
	for _, w := range invalid {
		assert.False(t, IsValidWord(w), "expected %q invalid", w)
	}
}
