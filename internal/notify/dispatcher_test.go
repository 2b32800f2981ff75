package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aaf11/internal/domain"
	"aaf11/internal/notify"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSender) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

// blockingSender holds every Send until release is closed.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSender) Send(ctx context.Context, _ notify.Message) error {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func closeNow(t *testing.T, d *notify.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_SendsAllThreeKinds(t *testing.T) {
	s := &fakeSender{}
	d, err := notify.NewDispatcher(s, []string{"staff@aaf11.in", "ops@aaf11.in"}, 8)
	require.NoError(t, err)

	d.OrderPlaced(domain.Order{
		ID:          "o-1",
		Customer:    domain.Customer{Name: "Asha", Email: "asha@college.edu", Phone: "9876543210"},
		Items:       []domain.LineItem{{Name: "Arduino Uno R3", Quantity: 2, UnitPrice: domain.MustMoney("450")}},
		TotalAmount: domain.MustMoney("900"),
	})
	d.HelpRequestCreated(domain.HelpRequest{ID: "h-1", Name: "Ravi", USN: "1AB21EC042", DepositAmount: domain.MustMoney("250")})
	d.ContactReceived(domain.ContactMessage{ID: "c-1", Name: "Meera", Subject: "Bulk order", Message: "hello"})
	closeNow(t, d)

	msgs := s.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"staff@aaf11.in", "ops@aaf11.in"}, msgs[0].To)
	assert.Equal(t, "New Order o-1 from Asha - AAF11", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "Arduino Uno R3")
	assert.Contains(t, msgs[0].HTML, "900.00")
	assert.Contains(t, msgs[0].HTML, "automated notification", "layout applied")

	assert.Equal(t, "New Help Request from Ravi - AAF11", msgs[1].Subject)
	assert.Contains(t, msgs[1].HTML, "250.00")
	assert.Equal(t, "Contact Form: Bulk order - AAF11", msgs[2].Subject)
}

func TestDispatcher_EscapesUserInput(t *testing.T) {
	s := &fakeSender{}
	d, err := notify.NewDispatcher(s, []string{"staff@aaf11.in"}, 4)
	require.NoError(t, err)
	d.ContactReceived(domain.ContactMessage{Name: "x", Subject: "hi", Message: `<script>alert(1)</script>`})
	closeNow(t, d)

	msgs := s.messages()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].HTML, "<script>")
	assert.Contains(t, msgs[0].HTML, "&lt;script&gt;")
}

func TestDispatcher_SendFailureIsLoggedOnly(t *testing.T) {
	buf := captureLog(t)
	s := &fakeSender{err: errors.New("smtp: 535 auth failed")}
	d, err := notify.NewDispatcher(s, []string{"staff@aaf11.in"}, 4)
	require.NoError(t, err)
	d.HelpRequestCreated(domain.HelpRequest{ID: "h-1", Name: "Ravi"})
	closeNow(t, d)

	out := buf.String()
	assert.Contains(t, out, `"action":"notify.send"`)
	assert.Contains(t, out, "535 auth failed")
}

func TestDispatcher_NoRecipientsSkipsSend(t *testing.T) {
	s := &fakeSender{}
	d, err := notify.NewDispatcher(s, nil, 4)
	require.NoError(t, err)
	d.ContactReceived(domain.ContactMessage{Subject: "x"})
	closeNow(t, d)
	assert.Empty(t, s.messages())
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	captureLog(t)
	b := &blockingSender{started: make(chan struct{}), release: make(chan struct{})}
	d, err := notify.NewDispatcher(b, []string{"staff@aaf11.in"}, 1)
	require.NoError(t, err)

	d.ContactReceived(domain.ContactMessage{Subject: "first"})
	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never picked up the first notification")
	}
	d.ContactReceived(domain.ContactMessage{Subject: "queued"})
	d.ContactReceived(domain.ContactMessage{Subject: "dropped"})
	assert.Equal(t, int64(1), d.Dropped())

	close(b.release)
	closeNow(t, d)

	// after Close further notifications are ignored rather than panicking
	d.ContactReceived(domain.ContactMessage{Subject: "late"})
}

func TestLogSender(t *testing.T) {
	buf := captureLog(t)
	err := notify.LogSender{}.Send(context.Background(), notify.Message{To: []string{"a@b.in"}, Subject: "Hello", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), `"subject":"Hello"`))
}
