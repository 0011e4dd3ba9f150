package chat

import (
	"testing"

	"bunpro-assist/lib/scrapers/bunpro"

	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt, err := BuildSystemPrompt(bunpro.StudyData{
		TroubledGrammar: []bunpro.GrammarPoint{
			{
				Link: "/grammar_points/te-shimau",
				Text: "てしまう",
				Structure: &bunpro.GrammarStructure{
					Japanese: "〜てしまう",
					Meaning:  "To do something by accident",
				},
			},
		},
		GhostReviews: []bunpro.GrammarPoint{},
	})
	require.NoError(t, err)

	require.Contains(t, prompt, "You are a Japanese language tutor")
	require.Contains(t, prompt, "You MUST use Japanese characters instead of Romaji")
	// the snapshot is embedded literally, no \u escapes
	require.Contains(t, prompt, "てしまう")
	require.Contains(t, prompt, `"link": "/grammar_points/te-shimau"`)
}

func TestBuildSystemPromptEmptySnapshot(t *testing.T) {
	prompt, err := BuildSystemPrompt(bunpro.StudyData{
		TroubledGrammar: []bunpro.GrammarPoint{},
		GhostReviews:    []bunpro.GrammarPoint{},
	})
	require.NoError(t, err)

	require.Contains(t, prompt, "You are a Japanese language tutor")
	require.Contains(t, prompt, `"troubled_grammar": []`)
	require.Contains(t, prompt, `"ghost_reviews": []`)
	require.Contains(t, prompt, "has not fetched any study data yet")
}
