// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"golang.org/x/oauth2"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to [http.RoundTripper].
type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// Call is one request seen by a [FakeAPI].
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

// FakeAPI is an httptest server that routes "METHOD /path" keys to handlers and records every call.
type FakeAPI struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewFakeAPI starts a [FakeAPI] that is closed when t finishes. Unrouted requests get 404.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{routes: make(map[string]http.HandlerFunc)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Handle registers h for method and path (without query).
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// Calls returns a copy of the recorded calls.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls to method and path.
func (f *FakeAPI) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	h, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
		return
	}
	h(w, r)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Data wraps v in the API's {"data": v} envelope.
func Data(v any) map[string]any {
	return map[string]any{"data": v}
}

// StaticTokenSource is an [oauth2.TokenSource] whose token can be swapped by tests.
type StaticTokenSource struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

// NewStaticTokenSource returns a source holding the pair; empty strings mean no token.
func NewStaticTokenSource(access, refresh string) *StaticTokenSource {
	s := &StaticTokenSource{}
	s.Set(access, refresh)
	return s
}

// Set replaces the held pair.
func (s *StaticTokenSource) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if access == "" && refresh == "" {
		s.tok = nil
		return
	}
	s.tok = &oauth2.Token{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}
}

func (s *StaticTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return nil, errors.New("no token")
	}
	tok := *s.tok
	return &tok, nil
}

// SessionRecorder records refresh and expiry callbacks and mirrors refreshed tokens into Source.
type SessionRecorder struct {
	mu        sync.Mutex
	Source    *StaticTokenSource
	Refreshed []*oauth2.Token
	Expired   int
}

func (s *SessionRecorder) TokensRefreshed(tok *oauth2.Token) {
	s.mu.Lock()
	s.Refreshed = append(s.Refreshed, tok)
	s.mu.Unlock()
	if s.Source != nil {
		s.Source.Set(tok.AccessToken, tok.RefreshToken)
	}
}

func (s *SessionRecorder) SessionExpired() {
	s.mu.Lock()
	s.Expired++
	s.mu.Unlock()
	if s.Source != nil {
		s.Source.Set("", "")
	}
}

// Counts returns the number of refreshes and expiries seen.
func (s *SessionRecorder) Counts() (refreshed, expired int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Refreshed), s.Expired
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
