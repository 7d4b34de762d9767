package prompt

import "fmt"

const humanizerSchema = `Respond with a single JSON object following this schema:
{
  "humanizer": {
    "humanized_text": "<string>",
    "changes_made": ["<string>"],
    "improvement_score": 0,
    "notes": "<string or null>"
  }
}

Requirements:
- Keep the meaning, facts and language of the original.
- Vary sentence length and structure, prefer concrete wording, remove filler transitions.
- improvement_score is 0-100: how much less machine-like the rewrite reads.`

// ForHumanize builds the rewrite prompt.
func ForHumanize(text string) string {
	return fmt.Sprintf("Rewrite the following text so it reads as naturally human-written.\n\n%s\n\nText to rewrite:\n\"\"\"\n%s\n\"\"\"", humanizerSchema, text)
}
