package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ai-detector/internal/application"
	"github.com/bryanwahyu/ai-detector/internal/client/gateway"
	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/history"
	"github.com/bryanwahyu/ai-detector/internal/infra/media"
	"github.com/bryanwahyu/ai-detector/internal/infra/storage"
)

// fakeGateway answers by request mode.
type fakeGateway struct {
	mu     sync.Mutex
	status int
	bodies map[detection.Mode]string
	seen   []gateway.Request
	hold   chan struct{}
}

func (f *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gateway.Request
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.seen = append(f.seen, req)
	status, body, hold := f.status, f.bodies[req.Mode], f.hold
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

type recorder struct {
	mu    sync.Mutex
	calls []Action
}

func (r *recorder) Notify(a Action, _ error) {
	r.mu.Lock()
	r.calls = append(r.calls, a)
	r.mu.Unlock()
}

func newSession(t *testing.T, fg *fakeGateway) (*Session, *history.Store, *recorder) {
	t.Helper()
	srv := httptest.NewServer(fg)
	t.Cleanup(srv.Close)

	store := history.NewStore(storage.NewMemory(), "", nil)
	require.NoError(t, store.Load(context.Background()))
	notes := &recorder{}
	s := NewSession(gateway.New(srv.URL, nil), store,
		WithNotifier(notes),
		WithClock(application.FixedClock{T: stamp}),
	)
	return s, store, notes
}

const detectionBody = `{"detection": {"risk_score": 81, "signals": ["flat tone"]}, "recommendations": ["vary length"]}`

func TestSession_AnalyzeSuccess(t *testing.T) {
	fg := &fakeGateway{bodies: map[detection.Mode]string{detection.ModeText: detectionBody}}
	s, store, notes := newSession(t, fg)

	rec, err := s.Analyze(context.Background(), media.FromText("some essay"))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ScanID)
	assert.Equal(t, detection.RiskHigh, rec.Detection.RiskLevel)
	assert.Equal(t, stamp, rec.Timestamp)
	assert.Equal(t, int64(10), *rec.FileInfo.SizeBytes)

	cur, hist := s.Snapshot()
	require.NotNil(t, cur)
	require.Len(t, hist, 1)
	assert.Equal(t, *cur, hist[0])
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, notes.calls)

	require.Len(t, fg.seen, 1)
	assert.Equal(t, "", fg.seen[0].MimeType)
}

func TestSession_AnalyzeFailureLeavesState(t *testing.T) {
	fg := &fakeGateway{bodies: map[detection.Mode]string{detection.ModeText: detectionBody}}
	s, store, notes := newSession(t, fg)

	_, err := s.Analyze(context.Background(), media.FromText("first"))
	require.NoError(t, err)
	before, _ := s.Result()

	fg.mu.Lock()
	fg.status = http.StatusInternalServerError
	fg.bodies[detection.ModeText] = `{"error": "model call failed", "code": "ServerError", "detection": {"risk_score": 0, "signals": ["Server error"]}}`
	fg.mu.Unlock()

	_, err = s.Analyze(context.Background(), media.FromText("second"))
	var se *gateway.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ServerError", se.Code)

	after, _ := s.Result()
	assert.Equal(t, before, after)
	assert.Equal(t, 1, store.Len(), "no partial record on failure")
	assert.Equal(t, []Action{ActionAnalyze}, notes.calls)
}

func TestSession_ImageSendsMime(t *testing.T) {
	fg := &fakeGateway{bodies: map[detection.Mode]string{detection.ModeImage: detectionBody}}
	s, _, _ := newSession(t, fg)

	u := media.FromBytes(detection.ModeImage, "cat.png", "", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	rec, err := s.Analyze(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "image/png", fg.seen[0].MimeType)
	assert.Equal(t, "cat.png", *rec.FileInfo.Name)

	_, err = s.Humanize(context.Background())
	assert.ErrorIs(t, err, ErrNothingToHumanize)
}

func TestSession_HumanizeOnlyTouchesCurrentResult(t *testing.T) {
	fg := &fakeGateway{bodies: map[detection.Mode]string{
		detection.ModeText:     detectionBody,
		detection.ModeHumanize: `{"humanizer": {"humanized_text": "A looser take.", "changes_made": ["contractions"], "improvement_score": 35}}`,
	}}
	s, store, _ := newSession(t, fg)

	_, err := s.Humanize(context.Background())
	assert.ErrorIs(t, err, ErrNothingToHumanize)

	rec, err := s.Analyze(context.Background(), media.FromText("stiff prose"))
	require.NoError(t, err)

	h, err := s.Humanize(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Requested)
	assert.Equal(t, "A looser take.", *h.HumanizedText)
	assert.Equal(t, "stiff prose", fg.seen[1].Content)

	cur, _ := s.Result()
	assert.Equal(t, h, cur.Humanizer)
	assert.Equal(t, rec.Detection, cur.Detection)

	stored := store.Records()[0]
	assert.False(t, stored.Humanizer.Requested, "history entry keeps scan-time humanizer")
	assert.Nil(t, stored.Humanizer.HumanizedText)
}

func TestSession_HumanizeTextIsStateless(t *testing.T) {
	fg := &fakeGateway{bodies: map[detection.Mode]string{detection.ModeHumanize: `{"humanized_text": "flat form"}`}}
	s, store, _ := newSession(t, fg)

	h, err := s.HumanizeText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "flat form", *h.HumanizedText)
	_, ok := s.Result()
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSession_DuplicateSubmissionIsBusy(t *testing.T) {
	hold := make(chan struct{})
	fg := &fakeGateway{hold: hold, bodies: map[detection.Mode]string{detection.ModeText: detectionBody}}
	s, store, _ := newSession(t, fg)

	done := make(chan error, 1)
	go func() {
		_, err := s.Analyze(context.Background(), media.FromText("one"))
		done <- err
	}()
	require.Eventually(t, func() bool { return s.Pending(ActionAnalyze) }, time.Second, 5*time.Millisecond)

	_, err := s.Analyze(context.Background(), media.FromText("two"))
	assert.ErrorIs(t, err, ErrBusy)

	close(hold)
	require.NoError(t, <-done)
	assert.False(t, s.Pending(ActionAnalyze))
	assert.Equal(t, 1, store.Len())
}
