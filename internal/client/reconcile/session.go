package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ai-detector/internal/application"
	"github.com/bryanwahyu/ai-detector/internal/client/gateway"
	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/history"
	"github.com/bryanwahyu/ai-detector/internal/infra/media"
)

// Action names a kind of user-triggered call. At most one of each is in flight.
type Action string

const (
	ActionAnalyze  Action = "analyze"
	ActionHumanize Action = "humanize"
)

var (
	// ErrBusy is returned while an action of the same kind is still pending.
	ErrBusy = errors.New("action already in progress")
	// ErrNothingToHumanize means there is no current text result.
	ErrNothingToHumanize = errors.New("no text result to humanize")
)

// Gateway is the subset of the gateway client a session needs.
type Gateway interface {
	Analyze(ctx context.Context, req gateway.Request) (detection.Raw, error)
}

// Notifier surfaces failures to the user.
type Notifier interface {
	Notify(action Action, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Action, error)

func (f NotifierFunc) Notify(a Action, err error) { f(a, err) }

// Session holds the displayed result. Result and history head change together
// under mu; Snapshot reads both under the same lock.
type Session struct {
	gw     Gateway
	store  *history.Store
	notify Notifier
	clock  application.Clock
	log    *zap.Logger

	mu     sync.Mutex
	result *detection.ScanRecord
	text   string

	pendingMu sync.Mutex
	pending   map[Action]bool
}

type Option func(*Session)

func WithNotifier(n Notifier) Option { return func(s *Session) { s.notify = n } }

func WithClock(c application.Clock) Option { return func(s *Session) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func NewSession(gw Gateway, store *history.Store, opts ...Option) *Session {
	s := &Session{
		gw:      gw,
		store:   store,
		notify:  NotifierFunc(func(Action, error) {}),
		clock:   application.SystemClock{},
		log:     zap.NewNop(),
		pending: make(map[Action]bool),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) begin(a Action) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending[a] {
		return ErrBusy
	}
	s.pending[a] = true
	return nil
}

func (s *Session) end(a Action) {
	s.pendingMu.Lock()
	delete(s.pending, a)
	s.pendingMu.Unlock()
}

// Pending reports whether an action of kind a is in flight.
func (s *Session) Pending(a Action) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pending[a]
}

// Analyze submits u. On failure nothing changes and the notifier is told; on
// success the record becomes the current result and the newest history entry.
func (s *Session) Analyze(ctx context.Context, u media.Upload) (detection.ScanRecord, error) {
	if err := s.begin(ActionAnalyze); err != nil {
		return detection.ScanRecord{}, err
	}
	defer s.end(ActionAnalyze)

	fi := media.FileInfoFor(u)
	body, err := s.gw.Analyze(ctx, gateway.Request{Mode: u.Mode, Content: u.Content(), MimeType: mimeFor(u)})
	if err != nil {
		s.notify.Notify(ActionAnalyze, err)
		return detection.ScanRecord{}, fmt.Errorf("analyze %s: %w", u.Mode, err)
	}

	rec := Reconcile(body, u.Mode, fi, s.clock.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.store.Prepend(ctx, rec)
	if err != nil {
		// kept in memory; only the write failed
		s.log.Warn("history not persisted", zap.String("scan_id", stored.ScanID), zap.Error(err))
		s.notify.Notify(ActionAnalyze, err)
	}
	s.result = &stored
	s.text = u.Text
	return stored, nil
}

// Humanize rewrites the current text result. Only the displayed result's
// humanizer changes; the stored history entry keeps what was recorded at scan time.
func (s *Session) Humanize(ctx context.Context) (detection.Humanizer, error) {
	s.mu.Lock()
	var scanID, text string
	if s.result != nil && s.result.Mode == detection.ModeText {
		scanID, text = s.result.ScanID, s.text
	}
	s.mu.Unlock()
	if text == "" {
		return detection.Humanizer{}, ErrNothingToHumanize
	}

	h, err := s.humanize(ctx, text)
	if err != nil {
		return detection.Humanizer{}, err
	}

	s.mu.Lock()
	if s.result != nil && s.result.ScanID == scanID {
		s.result.Humanizer = h
	}
	s.mu.Unlock()
	return h, nil
}

// HumanizeText rewrites text without touching the session state.
func (s *Session) HumanizeText(ctx context.Context, text string) (detection.Humanizer, error) {
	return s.humanize(ctx, text)
}

func (s *Session) humanize(ctx context.Context, text string) (detection.Humanizer, error) {
	if err := s.begin(ActionHumanize); err != nil {
		return detection.Humanizer{}, err
	}
	defer s.end(ActionHumanize)

	body, err := s.gw.Analyze(ctx, gateway.Request{Mode: detection.ModeHumanize, Content: text})
	if err != nil {
		s.notify.Notify(ActionHumanize, err)
		return detection.Humanizer{}, fmt.Errorf("humanize: %w", err)
	}
	return HumanizerOf(body), nil
}

// Result returns a copy of the current result, or false when there is none.
func (s *Session) Result() (detection.ScanRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return detection.ScanRecord{}, false
	}
	return *s.result, true
}

// Snapshot reads the current result and history together.
func (s *Session) Snapshot() (*detection.ScanRecord, []detection.ScanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur *detection.ScanRecord
	if s.result != nil {
		r := *s.result
		cur = &r
	}
	return cur, s.store.Records()
}

func mimeFor(u media.Upload) string {
	if u.Mode.IsMedia() {
		return u.MimeType
	}
	return ""
}
