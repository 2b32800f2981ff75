package handlers_test

import (
	"context"
	"testing"

	"aaf11/internal/domain"
)

func TestLogin_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.deps.Auth.EnsureUser(context.Background(), "staff", adminPassword, domain.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	var sid string
	entries := captureLogs(t, func() {
		resp, body := env.request("POST", "/api/login", map[string]string{"username": "staff", "password": adminPassword}, "")
		if resp.StatusCode != 200 {
			t.Fatalf("login want 200 got %d: %s", resp.StatusCode, body)
		}
		sid = extractCookie(resp, "sid")
	})
	if sid == "" {
		t.Fatal("login did not set sid cookie")
	}
	if !hasAction(entries, "auth.login.success") {
		t.Fatalf("expected auth.login.success, got %+v", entries)
	}

	resp, body := env.request("GET", "/api/me", nil, sid)
	if resp.StatusCode != 200 {
		t.Fatalf("me want 200 got %d", resp.StatusCode)
	}
	if me := decode[map[string]any](t, body); me["username"] != "staff" || me["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected me %v", me)
	}
	if _, ok := decode[map[string]any](t, body)["passwordHash"]; ok {
		t.Fatal("password hash must not be serialised")
	}

	resp, _ = env.request("POST", "/api/logout", nil, sid)
	if resp.StatusCode != 204 {
		t.Fatalf("logout want 204 got %d", resp.StatusCode)
	}
	resp, _ = env.request("GET", "/api/me", nil, sid)
	if resp.StatusCode != 401 {
		t.Fatalf("me after logout want 401 got %d", resp.StatusCode)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.deps.Auth.EnsureUser(context.Background(), "staff", adminPassword, domain.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	var code int
	var e apiError
	entries := captureLogs(t, func() {
		resp, body := env.request("POST", "/api/login", map[string]string{"username": "staff", "password": "wrong-password"}, "")
		code = resp.StatusCode
		e = decode[apiError](t, body)
		if extractCookie(resp, "sid") != "" {
			t.Fatal("failed login must not set a session")
		}
	})
	if code != 401 || e.Error != "bad_credentials" {
		t.Fatalf("want 401 bad_credentials, got %d %q", code, e.Error)
	}
	if !hasAction(entries, "auth.login.fail") {
		t.Fatalf("expected auth.login.fail, got %+v", entries)
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request("POST", "/api/login", map[string]string{"username": "x", "password": ""}, "")
	if resp.StatusCode != 401 {
		t.Fatalf("want 401 got %d: %s", resp.StatusCode, body)
	}
}
