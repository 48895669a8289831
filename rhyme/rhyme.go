// Package rhyme implements the classic Russian "hu-" rhyme: everything up to
// and including the first vowel of a word is replaced with "ху" plus the
// softened form of that vowel.
package rhyme

import "strings"

// NoRhyme is the reply for input the transform cannot handle.
const NoRhyme = "Не рифмуется"

// softened maps each Cyrillic vowel to the form that follows "ху".
var softened = map[rune]rune{
	'а': 'я', 'о': 'ё', 'у': 'ю', 'ы': 'и', 'э': 'е',
	'я': 'я', 'ё': 'ё', 'ю': 'ю', 'и': 'и', 'е': 'е',
}

// Reply rhymes the last word of a phrase. Empty input yields an empty reply;
// input without a rhymable word yields NoRhyme.
func Reply(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return ""
	}
	out, ok := Transform(words[len(words)-1])
	if !ok {
		return NoRhyme
	}
	return out
}

// Transform rhymes a single word. It reports false when the word has no
// Cyrillic vowel or the rhyme would reproduce the word itself.
func Transform(word string) (string, bool) {
	runes := []rune(strings.ToLower(strings.TrimSpace(word)))
	for i, r := range runes {
		v, ok := softened[r]
		if !ok {
			continue
		}
		out := "ху" + string(v) + string(runes[i+1:])
		if out == string(runes) {
			return "", false
		}
		return out, true
	}
	return "", false
}
