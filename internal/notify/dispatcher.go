package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	html "github.com/gofiber/template/html/v2"

	"aaf11/internal/domain"
	applog "aaf11/internal/log"
)

//go:embed templates
var templateFS embed.FS

const (
	layout      = "layouts/email"
	sendTimeout = 30 * time.Second
)

type job struct {
	template string
	subject  string
	data     any
}

// Dispatcher renders and sends notifications on a single worker goroutine.
// Enqueueing never blocks: when the queue is full the notification is dropped
// and logged.
type Dispatcher struct {
	sender  Sender
	to      []string
	views   *html.Engine
	queue   chan job
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewDispatcher(sender Sender, to []string, queueSize int) (*Dispatcher, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	views := html.NewFileSystem(http.FS(sub), ".html")
	if err := views.Load(); err != nil {
		return nil, fmt.Errorf("load notification templates: %w", err)
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender: sender,
		to:     to,
		views:  views,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
	}
	go d.listen()
	return d, nil
}

func (d *Dispatcher) OrderPlaced(o domain.Order) {
	d.enqueue(job{"order_placed", fmt.Sprintf("New Order %s from %s - AAF11", o.ID, o.Customer.Name), o})
}

func (d *Dispatcher) HelpRequestCreated(h domain.HelpRequest) {
	d.enqueue(job{"help_request", fmt.Sprintf("New Help Request from %s - AAF11", h.Name), h})
}

func (d *Dispatcher) ContactReceived(m domain.ContactMessage) {
	d.enqueue(job{"contact_message", fmt.Sprintf("Contact Form: %s - AAF11", m.Subject), m})
}

// Dropped reports how many notifications were discarded on a full queue.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		applog.Security(nil, "notify.closed", map[string]any{"template": j.template})
		return
	}
	select {
	case d.queue <- j:
	default:
		d.dropped.Add(1)
		applog.Error(nil, "notify.drop", fmt.Errorf("queue full"), map[string]any{"template": j.template})
	}
}

func (d *Dispatcher) listen() {
	defer close(d.done)
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	fields := map[string]any{"template": j.template, "subject": j.subject}
	if len(d.to) == 0 {
		applog.Info(nil, "notify.no_recipients", fields)
		return
	}
	body, err := d.Render(j.template, j.data)
	if err != nil {
		applog.Error(nil, "notify.render", err, fields)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, Message{To: d.to, Subject: j.subject, HTML: body}); err != nil {
		applog.Error(nil, "notify.send", err, fields)
		return
	}
	applog.Info(nil, "notify.sent", fields)
}

// Render executes a notification template inside the email layout.
func (d *Dispatcher) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := d.views.Render(&buf, name, data, layout); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Close stops accepting work and waits for queued notifications to be sent,
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
