package dat

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CanonicalTitle derives the canonical software title from a DAT game
// name: parenthesized region/status tags are stripped and a trailing
// ", The" (or ", A"/", An") article is rotated to the front.
//
//	"Activision Decathlon, The (USA)"        -> "The Activision Decathlon"
//	"A.E. (USA) (Proto)"                     -> "A.E."
//	"Antarctic Adventure (USA, Europe) (Beta)" -> "Antarctic Adventure"
func CanonicalTitle(gameName string) string {
	title := stripParens(gameName)
	title = strings.Join(strings.Fields(title), " ")

	for _, article := range []string{"The", "A", "An"} {
		suffix := ", " + article
		if strings.HasSuffix(title, suffix) {
			title = article + " " + strings.TrimSuffix(title, suffix)
			break
		}
	}
	return title
}

// stripParens removes every parenthesized group, including nested ones
func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchKeys produces the lookup variants for a title: alphanumeric
// tokens joined by spaces, and the same tokens concatenated. Both are
// lowercase, so "Mega Man" and "MegaMan" land on the same keys.
func SearchKeys(title string) []string {
	tokens := tokenize(title)
	if len(tokens) == 0 {
		return nil
	}
	spaced := strings.Join(tokens, " ")
	joined := strings.Join(tokens, "")
	if spaced == joined {
		return []string{spaced}
	}
	return []string{spaced, joined}
}

// tokenize splits a unicode-normalized title into lowercase
// alphanumeric runs
func tokenize(title string) []string {
	normalized := norm.NFC.String(strings.ToLower(title))

	var tokens []string
	var current strings.Builder
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
