package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"aaf11/internal/config"
	"aaf11/internal/domain"
	"aaf11/internal/http/handlers"
	"aaf11/internal/media"
	"aaf11/internal/notify"
	"aaf11/internal/repos"
)

const adminPassword = "Adm1n!pass"

type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return f.err
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	t          *testing.T
	app        *fiber.App
	db         *sqlx.DB
	deps       *handlers.Deps
	sender     *fakeSender
	dispatcher *notify.Dispatcher
	proofs     *media.ProofStore
	csrf       string
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:         ":memory:",
		RateLimit:     1000,
		MinDeposit:    decimal.NewFromInt(200),
		MaxProofBytes: 1 << 20,
		NotifyTo:      []string{"staff@aaf11.in"},
		UPI:           config.UPI{Payee: "aaf11@upi", Name: "AAF11"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, testConfig(), &fakeSender{})
}

func newTestEnvWith(t *testing.T, cfg config.Config, sender *fakeSender) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	proofs, err := media.NewProofStore(t.TempDir(), cfg.MaxProofBytes)
	if err != nil {
		t.Fatalf("proof store: %v", err)
	}
	dispatcher, err := notify.NewDispatcher(sender, cfg.NotifyTo, 16)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = dispatcher.Close(ctx)
	})

	deps := handlers.NewDeps(db, cfg, dispatcher, proofs)
	env := &testEnv{
		t: t, app: handlers.NewApp(cfg, deps), db: db, deps: deps,
		sender: sender, dispatcher: dispatcher, proofs: proofs,
	}
	env.csrf = env.fetchCSRF()
	return env
}

func (e *testEnv) fetchCSRF() string {
	e.t.Helper()
	resp, err := e.app.Test(httptest.NewRequest("GET", "/api/csrf", nil), -1)
	if err != nil {
		e.t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		e.t.Fatal("csrf token missing")
	}
	return tok
}

// drain waits for every queued notification to be handed to the sender.
func (e *testEnv) drain() {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.dispatcher.Close(ctx); err != nil {
		e.t.Fatalf("dispatcher close: %v", err)
	}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// request sends a JSON body (when body != nil) with the CSRF header and
// cookie set, plus the session cookie when sid != "".
func (e *testEnv) request(method, path string, body any, sid string) (*http.Response, []byte) {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, sid)
}

func (e *testEnv) send(req *http.Request, sid string) (*http.Response, []byte) {
	e.t.Helper()
	req.Header.Set("X-Csrf-Token", e.csrf)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: e.csrf})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		e.t.Fatal(err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (e *testEnv) userSession(role string) string {
	e.t.Helper()
	name := strings.ToLower(role) + "user"
	u, err := e.deps.Auth.EnsureUser(context.Background(), name, adminPassword, role)
	if err != nil {
		e.t.Fatalf("ensure user: %v", err)
	}
	sid := "sid-" + name
	if err := repos.NewUserRepo(e.db).BindSession(context.Background(), sid, u.ID); err != nil {
		e.t.Fatalf("bind session: %v", err)
	}
	return sid
}

func (e *testEnv) adminSession() string { return e.userSession(domain.RoleAdmin) }

func (e *testEnv) seedProduct(name, price string, stock int) domain.Product {
	e.t.Helper()
	p := domain.Product{Name: name, Description: name, Price: domain.MustMoney(price), Stock: stock, Image: "x.jpg", Category: "Components"}
	if err := repos.NewProductRepo(e.db).Create(context.Background(), &p); err != nil {
		e.t.Fatal(err)
	}
	return p
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
	return v
}

type apiError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type logEntry struct {
	Action string         `json:"action"`
	Level  string         `json:"level"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	mu.Lock()
	defer mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
