package moderation

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// minLangRunes is the shortest text worth a language guess.
const minLangRunes = 12

// Moderator computes advisory hints for the moderation queue.
// It never alters a message: the wall always shows the text as submitted.
type Moderator struct {
	matcher *goahocorasick.Machine
	log     *slog.Logger
}

// NewModerator builds the Aho-Corasick automaton over the normalized flagged words.
func NewModerator(flaggedWords []string, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(flaggedWords))
	seen := make(map[string]struct{}, len(flaggedWords))
	for _, word := range flaggedWords {
		normalized := normalizeRunes([]rune(word))
		if len(normalized) == 0 {
			continue
		}
		if _, ok := seen[string(normalized)]; ok {
			continue
		}
		seen[string(normalized)] = struct{}{}
		patterns = append(patterns, normalized)
	}

	m := &Moderator{log: log}
	if len(patterns) == 0 {
		log.Warn("Moderator started without flagged words")
		return m, nil
	}
	matcher := new(goahocorasick.Machine)
	if err := matcher.Build(patterns); err != nil {
		return nil, err
	}
	m.matcher = matcher
	return m, nil
}

// Flag returns the distinct flagged words found in text, in order of appearance.
// Matching ignores case, punctuation, spacing and common leet substitutions.
func (m *Moderator) Flag(text string) []string {
	if m.matcher == nil {
		return nil
	}
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return nil
	}

	var words []string
	seen := make(map[string]struct{})
	for _, term := range m.matcher.MultiPatternSearch(normalized, false) {
		word := string(term.Word)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}

// Lang guesses the ISO 639-1 language of text, or "" when unsure.
func (m *Moderator) Lang(text string) string {
	if utf8.RuneCountInString(text) < minLangRunes {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// Hints bundles Flag and Lang for the moderation queue.
func (m *Moderator) Hints(text string) ([]string, string) {
	return m.Flag(text), m.Lang(text)
}

// normalizeRunes applies simplification and noise removal to a slice of runes.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common Leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
