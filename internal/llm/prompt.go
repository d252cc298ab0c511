package llm

import (
	"fmt"
	"strings"

	"humanizer/internal/textstats"
)

const promptTemplate = `You are an expert ghostwriter and editor. Rewrite the following text to make it undetectable by AI detectors and completely natural.

STRICT RULES:
1. **NO EM-DASHES (%s):** Do not use the long dash character. Use commas, periods, or parentheses if needed. AI uses these too much.
2. **NO ROBOTIC VOCABULARY:** Avoid words like %s.
3. **SENTENCE VARIETY (BURSTINESS):** Mix very short, punchy sentences with longer, complex ones. Do not start every sentence the same way.
4. **NATURAL TONE:** Write as if you are speaking to a colleague or friend. Use contractions (it's, can't) where appropriate.
5. **RETAIN MEANING:** Keep the core facts, but completely change the structure and flow.
6. **OUTPUT ONLY:** Do not add introductory filler like "Here is the humanized version". Just give the text.

Text to rewrite:
"%s"
`

// BuildPrompt wraps text in the fixed rewriting instructions.
func BuildPrompt(text string) string {
	quoted := make([]string, len(textstats.BannedPhrases))
	for i, p := range textstats.BannedPhrases {
		quoted[i] = `"` + p + `"`
	}
	return fmt.Sprintf(promptTemplate, textstats.EmDash, strings.Join(quoted, ", "), text)
}
