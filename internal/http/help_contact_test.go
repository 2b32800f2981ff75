package handlers_test

import (
	"errors"
	"testing"
)

func helpBody(deposit string) map[string]any {
	return map[string]any{
		"name":           "Asha Rao",
		"usn":            "1ab21cs001",
		"year":           "3",
		"semester":       "5",
		"phone":          "+91 98450 12345",
		"email":          "asha@example.com",
		"projectDetails": "Line follower robot with PID tuning",
		"depositAmount":  deposit,
	}
}

// Help request with a deposit at or above the minimum is stored pending/pending.
func TestHelpRequest_CreatePending(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request("POST", "/api/help-requests", helpBody("250.00"), "")
	if resp.StatusCode != 201 {
		t.Fatalf("want 201 got %d: %s", resp.StatusCode, body)
	}
	got := decode[map[string]any](t, body)
	if got["status"] != "pending" || got["paymentStatus"] != "pending" {
		t.Fatalf("want pending/pending, got %v/%v", got["status"], got["paymentStatus"])
	}
	if got["depositAmount"] != "250.00" {
		t.Fatalf("want depositAmount 250.00, got %v", got["depositAmount"])
	}
	if got["usn"] != "1AB21CS001" {
		t.Fatalf("usn should be uppercased, got %v", got["usn"])
	}

	id, _ := got["id"].(string)
	resp, body = env.request("GET", "/api/help-requests/"+id, nil, "")
	if resp.StatusCode != 200 {
		t.Fatalf("detail want 200 got %d: %s", resp.StatusCode, body)
	}

	env.drain()
	if env.sender.count() != 1 {
		t.Fatalf("want one notification, got %d", env.sender.count())
	}
}

func TestHelpRequest_DepositBelowMinimum(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request("POST", "/api/help-requests", helpBody("150.00"), "")
	if resp.StatusCode != 400 {
		t.Fatalf("want 400 got %d: %s", resp.StatusCode, body)
	}
	if e := decode[apiError](t, body); e.Error != "deposit_too_low" {
		t.Fatalf("want deposit_too_low, got %q", e.Error)
	}
}

func TestHelpRequest_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	in := helpBody("250.00")
	delete(in, "name")
	in["email"] = "not-an-email"
	resp, body := env.request("POST", "/api/help-requests", in, "")
	if resp.StatusCode != 400 {
		t.Fatalf("want 400 got %d: %s", resp.StatusCode, body)
	}
	e := decode[apiError](t, body)
	if e.Error != "validation_failed" {
		t.Fatalf("want validation_failed, got %q", e.Error)
	}
	for _, f := range []string{"name", "email"} {
		if _, ok := e.Fields[f]; !ok {
			t.Fatalf("want field error on %s, got %v", f, e.Fields)
		}
	}
}

func TestHelpRequest_StatusAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.request("POST", "/api/help-requests", helpBody("200"), "")
	id := decode[map[string]any](t, body)["id"].(string)

	update := map[string]any{"status": "paid", "paymentStatus": "paid"}
	resp, _ := env.request("PATCH", "/api/help-requests/"+id+"/status", update, "")
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous want 401 got %d", resp.StatusCode)
	}

	admin := env.adminSession()
	resp, body = env.request("PATCH", "/api/help-requests/"+id+"/status", update, admin)
	if resp.StatusCode != 200 {
		t.Fatalf("admin want 200 got %d: %s", resp.StatusCode, body)
	}
	if got := decode[map[string]any](t, body); got["status"] != "paid" || got["paymentStatus"] != "paid" {
		t.Fatalf("unexpected state %v", got)
	}

	resp, _ = env.request("PATCH", "/api/help-requests/"+id+"/status", map[string]any{}, admin)
	if resp.StatusCode != 400 {
		t.Fatalf("empty update want 400 got %d", resp.StatusCode)
	}

	resp, _ = env.request("PATCH", "/api/help-requests/"+id+"/status", map[string]any{"status": "pending"}, admin)
	if resp.StatusCode != 409 {
		t.Fatalf("paid -> pending want 409 got %d", resp.StatusCode)
	}
}

// Contact messages always start unread, whatever the client sends.
func TestContact_AlwaysUnread(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request("POST", "/api/contact", map[string]any{
		"name":    "Ravi",
		"email":   "ravi@example.com",
		"subject": "Bulk order",
		"message": "Do you stock 50 servos?",
		"status":  "replied",
	}, "")
	if resp.StatusCode != 201 {
		t.Fatalf("want 201 got %d: %s", resp.StatusCode, body)
	}
	if got := decode[map[string]any](t, body); got["status"] != "unread" {
		t.Fatalf("want unread, got %v", got["status"])
	}
}

// A failing mail transport never fails the request; the error is only logged.
func TestContact_NotificationFailureIsBestEffort(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	env := newTestEnvWith(t, testConfig(), sender)

	var code int
	entries := captureLogs(t, func() {
		resp, _ := env.request("POST", "/api/contact", map[string]any{
			"name":    "Ravi",
			"email":   "ravi@example.com",
			"subject": "Hello",
			"message": "Hi there",
		}, "")
		code = resp.StatusCode
		env.drain()
	})
	if code != 201 {
		t.Fatalf("want 201 got %d", code)
	}
	if sender.count() != 1 {
		t.Fatalf("want one send attempt, got %d", sender.count())
	}
	if !hasAction(entries, "notify.send") {
		t.Fatalf("expected notify.send failure log, got %+v", entries)
	}
}

func TestContact_AdminListAndStatus(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.request("POST", "/api/contact", map[string]any{
		"name": "Ravi", "email": "ravi@example.com", "subject": "Hi", "message": "Hello",
	}, "")
	id := decode[map[string]any](t, body)["id"].(string)
	admin := env.adminSession()

	resp, body := env.request("GET", "/api/contact", nil, admin)
	if resp.StatusCode != 200 {
		t.Fatalf("list want 200 got %d", resp.StatusCode)
	}
	if list := decode[[]map[string]any](t, body); len(list) != 1 {
		t.Fatalf("want 1 message, got %d", len(list))
	}

	resp, body = env.request("PATCH", "/api/contact/"+id+"/status", map[string]any{"status": "read"}, admin)
	if resp.StatusCode != 200 {
		t.Fatalf("want 200 got %d: %s", resp.StatusCode, body)
	}
	if got := decode[map[string]any](t, body); got["status"] != "read" {
		t.Fatalf("want read, got %v", got["status"])
	}

	resp, _ = env.request("PATCH", "/api/contact/"+id+"/status", map[string]any{"status": "bogus"}, admin)
	if resp.StatusCode != 400 {
		t.Fatalf("unknown status want 400 got %d", resp.StatusCode)
	}
}
