package services

import "aaf11/internal/domain"

// Notifier receives freshly committed records. Implementations must not block
// the caller and never report delivery failures back.
type Notifier interface {
	OrderPlaced(o domain.Order)
	HelpRequestCreated(h domain.HelpRequest)
	ContactReceived(m domain.ContactMessage)
}

// NopNotifier drops everything.
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(domain.Order)             {}
func (NopNotifier) HelpRequestCreated(domain.HelpRequest) {}
func (NopNotifier) ContactReceived(domain.ContactMessage) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
