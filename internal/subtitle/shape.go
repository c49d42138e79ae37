package subtitle

import (
	"github.com/01walid/goarabic"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/norm"
)

// HasArabic reports whether text contains Arabic-letter (bidi class AL) runes.
func HasArabic(text string) bool {
	for _, r := range text {
		if p, _ := bidi.LookupRune(r); p.Class() == bidi.AL {
			return true
		}
	}
	return false
}

// Reshape replaces Arabic letters with their contextual presentation forms so
// renderers without a shaping engine still draw joined glyphs. Logical order
// is preserved; visual reordering is left to the bidi embedding markers.
// Harakat do not break a join: letters are shaped without them and each mark
// is put back after the letter it followed.
func Reshape(text string) string {
	if !HasArabic(text) {
		return text
	}
	text = norm.NFC.String(text)

	letters, marks := splitMarks([]rune(text))
	if len(marks) == 0 {
		return goarabic.ToGlyph(text)
	}

	shaped := []rune(goarabic.ToGlyph(string(letters)))
	if len(shaped) != len(letters) {
		// a ligature swallowed a letter, so positions no longer line up
		return goarabic.ToGlyph(text)
	}

	out := make([]rune, 0, len(shaped)+len(marks))
	out = append(out, marks[-1]...)
	for i, r := range shaped {
		out = append(out, r)
		out = append(out, marks[i]...)
	}
	return string(out)
}

// splitMarks separates combining marks from the letters they follow. marks
// is keyed by letter index; -1 holds marks before the first letter.
func splitMarks(runes []rune) ([]rune, map[int][]rune) {
	letters := make([]rune, 0, len(runes))
	marks := make(map[int][]rune)
	for _, r := range runes {
		if isTransparent(r) {
			at := len(letters) - 1
			marks[at] = append(marks[at], r)
			continue
		}
		letters = append(letters, r)
	}
	return letters, marks
}

func isTransparent(r rune) bool {
	if r < 0x0610 || r > 0x06FF {
		return false
	}
	p, _ := bidi.LookupRune(r)
	return p.Class() == bidi.NSM
}
