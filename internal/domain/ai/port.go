package ai

import "context"

// Part is an inline media attachment sent alongside the prompt.
type Part struct {
	MIMEType string
	Data     []byte
}

// Client is the external generative model. One call, one raw text reply.
type Client interface {
	Generate(ctx context.Context, prompt string, parts []Part) (string, error)
}
