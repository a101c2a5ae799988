package browser

import "sync"

// Severity classifies a transient message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityNotice  Severity = "notice"
	SeverityDanger  Severity = "danger"
)

// Message is a one-shot notification surfaced on the next rendered page.
type Message struct {
	Severity Severity
	Text     string
}

// Notifier accumulates messages until the next render drains them.
type Notifier struct {
	mu      sync.Mutex
	pending []Message
}

// NewNotifier returns an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Post queues a message.
func (n *Notifier) Post(severity Severity, text string) {
	if text == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, Message{Severity: severity, Text: text})
}

// Success queues a success message.
func (n *Notifier) Success(text string) { n.Post(SeveritySuccess, text) }

// Notice queues a neutral message.
func (n *Notifier) Notice(text string) { n.Post(SeverityNotice, text) }

// Danger queues a failure message.
func (n *Notifier) Danger(text string) { n.Post(SeverityDanger, text) }

// Drain returns the queued messages and clears the queue.
func (n *Notifier) Drain() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
