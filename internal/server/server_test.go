package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"scrapbot/internal/bot"
	"scrapbot/internal/catalog"
)

type memStore struct {
	sessions map[string]*bot.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*bot.Session)}
}

func (m *memStore) Get(_ context.Context, id string) (*bot.Session, error) {
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return &bot.Session{Step: bot.StepStart}, nil
}

func (m *memStore) Save(_ context.Context, id string, s *bot.Session) error {
	copied := *s
	m.sessions[id] = &copied
	return nil
}

func (m *memStore) Clear(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type okSink struct{}

func (okSink) Submit(context.Context, bot.BookingRecord) error { return nil }

func newTestServer(t *testing.T, store *memStore) *Server {
	t.Helper()

	cat, err := catalog.New([]catalog.Entry{
		{Name: "Steel", Price: "30", Unit: "KG", ImageURL: "https://example.com/steel.jpg"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}

	index := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(index, []byte("<html>chat</html>"), 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	engine := bot.NewEngine(cat, bot.DefaultAgents(), okSink{}, zap.NewNop())
	return New(Config{
		Addr:       ":0",
		IndexPath:  index,
		RateLimit:  100,
		RateWindow: time.Minute,
	}, engine, store, nil, nil, zap.NewNop())
}

func postTurn(t *testing.T, handler http.Handler, cookie *http.Cookie, input string) (*httptest.ResponseRecorder, turnResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/get_price",
		strings.NewReader(`{"material": `+jsonString(input)+`}`))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp turnResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return w, resp
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func sessionCookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	return nil
}

func TestFirstTurnIssuesCookie(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	handler := srv.httpSrv.Handler

	w, resp := postTurn(t, handler, nil, "yes")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sessionCookieFrom(w) == nil {
		t.Error("first turn did not set a session cookie")
	}
	if !strings.Contains(resp.Response, "What type of scrap") {
		t.Errorf("unexpected reply: %q", resp.Response)
	}
	if resp.Image != nil {
		t.Errorf("image = %v, want null", *resp.Image)
	}
}

func TestTurnsShareSessionViaCookie(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)
	handler := srv.httpSrv.Handler

	w, _ := postTurn(t, handler, nil, "yes")
	cookie := sessionCookieFrom(w)
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	_, resp := postTurn(t, handler, cookie, "steel")
	if !strings.Contains(resp.Response, "The price of Steel") {
		t.Errorf("unexpected reply: %q", resp.Response)
	}
	if resp.Image == nil || *resp.Image != "https://example.com/steel.jpg" {
		t.Errorf("image = %v, want the steel image", resp.Image)
	}

	sess, _ := store.Get(context.Background(), cookie.Value)
	if sess.Step != bot.StepAskQuantity {
		t.Errorf("stored step = %q, want %q", sess.Step, bot.StepAskQuantity)
	}
}

func TestHomeResetsSession(t *testing.T) {
	store := newMemStore()
	srv := newTestServer(t, store)
	handler := srv.httpSrv.Handler

	w, _ := postTurn(t, handler, nil, "yes")
	cookie := sessionCookieFrom(w)
	if cookie == nil {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	home := httptest.NewRecorder()
	handler.ServeHTTP(home, req)
	if home.Code != http.StatusOK {
		t.Fatalf("home status = %d", home.Code)
	}

	if _, ok := store.sessions[cookie.Value]; ok {
		t.Error("landing on the entry page did not clear the session")
	}
	fresh := sessionCookieFrom(home)
	if fresh == nil {
		t.Error("home did not issue a fresh cookie")
	} else if fresh.Value == cookie.Value {
		t.Error("home reused the old session id")
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	handler := srv.httpSrv.Handler

	req := httptest.NewRequest(http.MethodPost, "/get_price", strings.NewReader("{"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExportDisabledWithoutLedger(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	handler := srv.httpSrv.Handler

	req := httptest.NewRequest(http.MethodGet, "/admin/export", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, newMemStore())
	handler := srv.httpSrv.Handler

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
