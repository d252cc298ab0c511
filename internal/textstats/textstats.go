// Package textstats counts words and scans rewritten text for the stylistic
// markers the rewrite prompt forbids.
package textstats

import (
	"sort"
	"strings"
	"unicode"
)

// EmDash is the long dash the rewrite prompt bans.
const EmDash = "—"

// BannedPhrases are the words and phrases the rewrite prompt tells the model to avoid.
var BannedPhrases = []string{
	"delve",
	"tapestry",
	"complex landscape",
	"testament",
	"underscore",
	"moreover",
	"in conclusion",
}

// Stats summarises an original/humanized pair.
type Stats struct {
	InputWords    int      `json:"input_words"`
	OutputWords   int      `json:"output_words"`
	EmDashes      int      `json:"em_dashes"`
	BannedPhrases []string `json:"banned_phrases"`
}

// WordCount returns the number of whitespace-separated words, 0 for blank text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Analyze computes Stats for a rewrite.
func Analyze(original, humanized string) Stats {
	return Stats{
		InputWords:    WordCount(original),
		OutputWords:   WordCount(humanized),
		EmDashes:      strings.Count(humanized, EmDash),
		BannedPhrases: FindBanned(humanized),
	}
}

// FindBanned returns the banned phrases present in text, matched
// case-insensitively on word boundaries, sorted and deduplicated.
func FindBanned(text string) []string {
	normalized := " " + strings.Join(strings.FieldsFunc(strings.ToLower(text), isSeparator), " ") + " "
	found := []string{}
	for _, phrase := range BannedPhrases {
		if strings.Contains(normalized, " "+phrase+" ") {
			found = append(found, phrase)
		}
	}
	sort.Strings(found)
	return found
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
}
