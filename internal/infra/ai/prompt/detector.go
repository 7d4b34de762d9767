package prompt

import "fmt"

// System provides strict directions for JSON-only output. Shared by every mode.
func System() string {
	return `You are an expert analyst of machine-generated content. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.`
}

const detectionSchema = `Respond with a single JSON object following this schema (example with empty values):
{
  "detection": {
    "risk_score": 0,
    "risk_level": "<LOW|MEDIUM|HIGH>",
    "summary": "<string>",
    "detailed_analysis": "<string>",
    "signals": ["<string>"],
    "is_ai_generated": false,
    "ai_probability": 0.0,
    "human_probability": 0.0,
    "confidence": "<high|medium|low>",
    "model_suspected": "<string or null>"
  },
  "recommendations": ["<string>"]
}

Requirements:
- risk_score is an integer from 0 to 100 measuring how likely the content is AI-generated.
- risk_level is LOW for 0-30, MEDIUM for 31-70, HIGH for 71-100.
- ai_probability and human_probability are between 0 and 1 and should sum to 1.
- signals lists the concrete observations behind the verdict; include at least one.
- recommendations are short, actionable suggestions for the author or reviewer.`

// ForText builds the detection prompt around user text.
func ForText(text string) string {
	return fmt.Sprintf("Analyze whether the following text was written by an AI model or a human.\n\n%s\n\nText to analyze:\n\"\"\"\n%s\n\"\"\"", detectionSchema, text)
}

// ForFile builds the detection prompt for an attached document.
func ForFile(mimeType string) string {
	return fmt.Sprintf("Analyze whether the written content of the attached document (%s) was produced by an AI model or a human. Judge the prose itself, not the formatting.\n\n%s", mimeType, detectionSchema)
}

// ForImage builds the detection prompt for an attached image.
func ForImage(mimeType string) string {
	return fmt.Sprintf("Analyze whether the attached image (%s) was generated or heavily edited by an AI model. Look for artifacts such as inconsistent lighting, malformed hands or text, repeated textures and unnatural symmetry.\n\n%s", mimeType, detectionSchema)
}
