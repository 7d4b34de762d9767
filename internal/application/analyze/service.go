package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ai-detector/internal/domain/ai"
	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/infra/ai/prompt"
)

const (
	DefaultMaxContentBytes = 20 << 20
	DefaultMaxTextChars    = 15000
)

// Limits bounds request content and prompt size.
type Limits struct {
	MaxContentBytes int64
	MaxTextChars    int
}

// Request is the gateway input as received on the wire.
type Request struct {
	Mode     string  `json:"mode"`
	Content  string  `json:"content"`
	MimeType *string `json:"mimeType"`
}

// Response is the normalized gateway output. Exactly one of Report or
// Humanizer is set once the mode is known.
type Response struct {
	Mode      detection.Mode
	Report    *detection.Report
	Humanizer *detection.Humanizer
	// Fallback is true when the model reply was not JSON and defaults were substituted.
	Fallback bool
}

// Body returns the JSON body for the response's mode.
func (r Response) Body() map[string]any {
	switch {
	case r.Humanizer != nil:
		return map[string]any{"humanizer": r.Humanizer}
	case r.Report != nil:
		return map[string]any{"detection": r.Report.Detection, "recommendations": r.Report.Recommendations}
	default:
		return map[string]any{}
	}
}

// Service implements the analyze use case. Stateless per request.
type Service struct {
	client ai.Client
	apiKey string
	limits Limits
	log    *zap.Logger
}

func NewService(client ai.Client, apiKey string, limits Limits, log *zap.Logger) *Service {
	if limits.MaxContentBytes <= 0 {
		limits.MaxContentBytes = DefaultMaxContentBytes
	}
	if limits.MaxTextChars <= 0 {
		limits.MaxTextChars = DefaultMaxTextChars
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, apiKey: apiKey, limits: limits, log: log}
}

// Limits returns the effective limits.
func (s *Service) Limits() Limits { return s.limits }

// Configured reports whether a model credential is present.
func (s *Service) Configured() bool {
	return s.client != nil && strings.TrimSpace(s.apiKey) != ""
}

// Analyze validates the request, calls the model once and normalizes the reply.
// Request-shape errors return an empty Response. Configuration and upstream
// errors return a Response that still carries the default shape for the mode.
func (s *Service) Analyze(ctx context.Context, req Request) (Response, error) {
	mode, ok := detection.ParseMode(req.Mode)
	if !ok {
		return Response{}, detection.BadRequest("unknown mode %q", req.Mode)
	}
	if strings.TrimSpace(req.Content) == "" {
		return Response{}, detection.BadRequest("content is required")
	}
	if err := checkSize(req.Content, s.limits.MaxContentBytes); err != nil {
		return Response{}, err
	}

	var (
		userPrompt string
		parts      []ai.Part
	)
	switch mode {
	case detection.ModeText, detection.ModeHumanize:
		text := Truncate(SanitizeString(req.Content), s.limits.MaxTextChars)
		if text == "" {
			return Response{}, detection.BadRequest("content is empty after sanitizing")
		}
		if mode == detection.ModeHumanize {
			userPrompt = prompt.ForHumanize(text)
		} else {
			userPrompt = prompt.ForText(text)
		}
	case detection.ModeFile, detection.ModeImage:
		mimeType := ""
		if req.MimeType != nil {
			mimeType = strings.ToLower(strings.TrimSpace(*req.MimeType))
		}
		if err := ValidateMimeType(mode, mimeType); err != nil {
			return Response{}, err
		}
		data, err := DecodeMedia(req.Content)
		if err != nil {
			return Response{}, err
		}
		parts = []ai.Part{{MIMEType: mimeType, Data: data}}
		if mode == detection.ModeImage {
			userPrompt = prompt.ForImage(mimeType)
		} else {
			userPrompt = prompt.ForFile(mimeType)
		}
	}

	if !s.Configured() {
		return failed(mode), detection.ErrConfiguration
	}

	// satu kali panggil model, tanpa retry
	raw, err := s.client.Generate(ctx, userPrompt, parts)
	if err != nil {
		s.log.Error("model call failed", zap.String("mode", string(mode)), zap.Error(err))
		return failed(mode), fmt.Errorf("%w: %w", detection.ErrUpstreamCall, err)
	}

	body, err := ParseReply(raw)
	fallback := err != nil
	if fallback {
		s.log.Warn("model reply unparseable, using defaults",
			zap.String("mode", string(mode)),
			zap.Int("reply_len", len(raw)),
			zap.Error(err),
		)
	}

	resp := Response{Mode: mode, Fallback: fallback}
	if mode == detection.ModeHumanize {
		if fallback {
			body = detection.Raw{"humanized_text": raw}
		}
		h := detection.HumanizerFrom(body)
		h.Requested = true
		resp.Humanizer = &h
		return resp, nil
	}

	var report detection.Report
	if fallback {
		report = detection.Report{
			Detection:       detection.UnparsedDetection(),
			Recommendations: detection.NormalizeRecommendations(nil),
		}
	} else {
		report = detection.NormalizeReport(body)
	}
	resp.Report = &report
	return resp, nil
}

// failed builds the default body returned alongside a 500.
func failed(mode detection.Mode) Response {
	if mode == detection.ModeHumanize {
		h := detection.NormalizeHumanizer(nil)
		h.Requested = true
		return Response{Mode: mode, Humanizer: &h}
	}
	return Response{Mode: mode, Report: &detection.Report{
		Detection:       detection.ServerErrorDetection(),
		Recommendations: []string{},
	}}
}

// IsRequestError reports whether err is a request-shape error rather than an upstream one.
func IsRequestError(err error) bool {
	return errors.Is(err, detection.ErrBadRequest) ||
		errors.Is(err, detection.ErrPayloadTooLarge) ||
		errors.Is(err, detection.ErrMethodNotAllowed)
}
