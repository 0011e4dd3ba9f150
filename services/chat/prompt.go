package chat

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bunpro-assist/lib/scrapers/bunpro"
)

const promptTemplate = `You are a Japanese language tutor with access to the following grammar points from Bunpro:
%s
- Use this information to help answer questions about Japanese grammar.
- You MUST use Japanese characters instead of Romaji.`

const noDataNote = "(The user has not fetched any study data yet.)"

// BuildSystemPrompt renders the tutor instruction with the grammar
// snapshot embedded as literal JSON, Japanese characters unescaped. An
// empty snapshot still produces a usable prompt, the tutor is just told
// there is no account specific material to draw on.
func BuildSystemPrompt(data bunpro.StudyData) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(data)
	if err != nil {
		return "", err
	}
	embedded := buf.String()
	if len(data.TroubledGrammar) == 0 && len(data.GhostReviews) == 0 {
		embedded += noDataNote + "\n"
	}
	return fmt.Sprintf(promptTemplate, embedded), nil
}
