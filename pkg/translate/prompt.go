package translate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// batchEntry is one element of the structured batch payload and response.
type batchEntry struct {
	ID          int    `json:"id"`
	Text        string `json:"text,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// batchPrompt builds the structured batch instruction. Each text gets a
// stable integer id so the response can be reconciled even when entries come
// back out of order or partially.
func batchPrompt(texts []string, sourceLang, targetLang string) string {
	input := make([]batchEntry, len(texts))
	for i, text := range texts {
		input[i] = batchEntry{ID: i, Text: text}
	}
	payload, _ := json.Marshal(input)

	return fmt.Sprintf(`Translate the following %s texts to %s.

IMPORTANT RULES:
- Return ONLY a valid JSON array with translations
- Each item must have "id" (same as input) and "translation" fields
- Preserve numbers, special characters, and formatting
- If text contains only numbers/symbols, return as-is

Input:
%s

Output format (JSON array only, no other text):
[{"id": 0, "translation": "..."}, {"id": 1, "translation": "..."}, ...]`,
		sourceLang, targetLang, payload)
}

// singlePrompt builds the one-shot fallback instruction.
func singlePrompt(text, targetLang string) string {
	return fmt.Sprintf("Translate to %s. Output only the translation:\n%s", targetLang, text)
}

// sanitizeSingle trims the single-call response down to the translation.
func sanitizeSingle(raw string) string {
	return strings.TrimSpace(raw)
}
