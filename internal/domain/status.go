package domain

// OrderStatus: pending -> paid -> completed, cancelled from pending or paid.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderCompleted, OrderCancelled},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderPaid, OrderCompleted, OrderCancelled:
		return st, true
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return allowed(orderTransitions[s], next)
}

// HelpStatus: pending -> paid -> in_progress -> completed, refunded from any
// non-terminal state.
type HelpStatus string

const (
	HelpPending    HelpStatus = "pending"
	HelpPaid       HelpStatus = "paid"
	HelpInProgress HelpStatus = "in_progress"
	HelpCompleted  HelpStatus = "completed"
	HelpRefunded   HelpStatus = "refunded"
)

var helpTransitions = map[HelpStatus][]HelpStatus{
	HelpPending:    {HelpPaid, HelpRefunded},
	HelpPaid:       {HelpInProgress, HelpRefunded},
	HelpInProgress: {HelpCompleted, HelpRefunded},
}

func ParseHelpStatus(s string) (HelpStatus, bool) {
	switch st := HelpStatus(s); st {
	case HelpPending, HelpPaid, HelpInProgress, HelpCompleted, HelpRefunded:
		return st, true
	}
	return "", false
}

func (s HelpStatus) CanTransitionTo(next HelpStatus) bool {
	return allowed(helpTransitions[s], next)
}

func (s HelpStatus) Terminal() bool { return len(helpTransitions[s]) == 0 }

// PaymentStatus is the deposit axis of a help request, independent of HelpStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid},
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentPaid:
		return st, true
	}
	return "", false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return allowed(paymentTransitions[s], next)
}

// ContactStatus: unread -> read -> replied, or unread -> replied.
type ContactStatus string

const (
	ContactUnread  ContactStatus = "unread"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

var contactTransitions = map[ContactStatus][]ContactStatus{
	ContactUnread: {ContactRead, ContactReplied},
	ContactRead:   {ContactReplied},
}

func ParseContactStatus(s string) (ContactStatus, bool) {
	switch st := ContactStatus(s); st {
	case ContactUnread, ContactRead, ContactReplied:
		return st, true
	}
	return "", false
}

func (s ContactStatus) CanTransitionTo(next ContactStatus) bool {
	return allowed(contactTransitions[s], next)
}

func allowed[T comparable](targets []T, next T) bool {
	for _, t := range targets {
		if t == next {
			return true
		}
	}
	return false
}
