package mock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	LoginKeyPath      = "/api/Auth/loginKey"
	ValidatePath      = "/api/Auth/validate"
	AccountSearchPath = "/api/Account/search"
)

type MockResponse struct {
	Status int
	Body   string
}

type MockRequest struct {
	Authorization string
	Body          []byte
}

// MockTopstepX is an in-process stand-in for the platform gateway.
type MockTopstepX struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses map[string]MockResponse
	requests  map[string][]MockRequest
	onRequest func(path string)
}

func NewMockTopstepX(t testing.TB) *MockTopstepX {
	m := &MockTopstepX{
		responses: map[string]MockResponse{
			LoginKeyPath:      {Status: http.StatusOK, Body: `{"token":"tok-abc","success":true,"errorCode":0,"errorMessage":null}`},
			ValidatePath:      {Status: http.StatusOK, Body: `{"success":true,"errorCode":0,"errorMessage":null}`},
			AccountSearchPath: {Status: http.StatusOK, Body: `{"accounts":[],"success":true,"errorCode":0,"errorMessage":null}`},
		},
		requests: make(map[string][]MockRequest),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.serveHTTP))
	t.Cleanup(m.server.Close)

	return m
}

func (m *MockTopstepX) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	resp, found := m.responses[r.URL.Path]
	if r.Method != http.MethodPost {
		found = false
	}
	m.requests[r.URL.Path] = append(m.requests[r.URL.Path], MockRequest{
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	hook := m.onRequest
	m.mu.Unlock()

	if hook != nil {
		hook(r.URL.Path)
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}

func (m *MockTopstepX) URL() string {
	return m.server.URL
}

func (m *MockTopstepX) SetResponse(path string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{Status: status, Body: body}
}

// OnRequest registers a hook that runs before each response is written.
func (m *MockTopstepX) OnRequest(fn func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRequest = fn
}

func (m *MockTopstepX) Requests(path string) []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests[path]...)
}

func (m *MockTopstepX) LastRequest(path string) (MockRequest, bool) {
	reqs := m.Requests(path)
	if len(reqs) == 0 {
		return MockRequest{}, false
	}

	return reqs[len(reqs)-1], true
}
