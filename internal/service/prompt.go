package service

import (
	"fmt"

	"github.com/himanshusingh9554/edumateai/internal/transcript"
)

// ContextBudget is the maximum number of transcript characters included in
// a prompt.
const ContextBudget = 3000

// BuildContext renders the prompt context block for a transcript result.
// Speech-derived text is labeled as an audio transcription; everything else
// (captions, scraped captions, scrape fallback, a transcript cached on the
// video) is a transcript snippet. Text beyond the budget is cut.
func BuildContext(text string, provenance transcript.Provenance) string {
	label := "Transcript snippet"
	if provenance == transcript.ProvenanceSpeechToText {
		label = "Audio transcription"
	}
	return fmt.Sprintf("%s:\n%s...", label, truncate(text, ContextBudget))
}

// BuildMetadataContext renders the last-resort context from video metadata.
func BuildMetadataContext(meta *transcript.Metadata) string {
	return fmt.Sprintf("Video Info:\nTitle: %s\nDescription: %s", meta.Title, meta.Description)
}

// BuildPlaceholderContext is used when every context source failed. The
// pipeline never aborts for lack of context.
func BuildPlaceholderContext(videoURL string) string {
	return fmt.Sprintf("No transcript or captions available. Video: %s", videoURL)
}

// BuildPrompt assembles the fixed instruction template around the question
// and context.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(`You are **EduMate AI**, an advanced educational assistant that provides **complete, formatted, and verified answers**.

User Question:
%q

Context (from video or transcript):
%s

Your task:
1. If the question is about *formulas, derivations, or physics/math concepts*, list **all relevant formulas** clearly.
2. Always format formulas in **LaTeX markdown style** like this: `+"`$$ E = mc^2 $$`"+`
3. Include **variable definitions** (e.g., where M = total mass, r = position vector).
4. If multiple cases apply (discrete, continuous, 2D/3D), **include all cases**.
5. Keep the tone educational and concise (under 8 lines).

Output only the final explanation with formulas — no pretext, no "Here is the answer:".
`, question, context)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
