package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnsupportedMedia indicates the provider cannot accept the attached media type.
var ErrUnsupportedMedia = errors.New("ai provider does not support this media type")

// ErrEmptyReply indicates the provider answered without any candidate text.
var ErrEmptyReply = errors.New("ai provider returned no content")
