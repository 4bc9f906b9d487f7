package domain

import "time"

type SessionRequest struct {
	ReturnURL string
	Amount    int64
	Currency  Currency
	Reference string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionEvent struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type SessionStatus struct {
	ID     string
	Events []SessionEvent
}

// LatestEventName returns the name of the last event in provider order, or
// "PENDING" when there is nothing usable to map.
func (s *SessionStatus) LatestEventName() string {
	if s == nil || len(s.Events) == 0 {
		return string(PaymentStatusPending)
	}
	name := s.Events[len(s.Events)-1].Name
	if name == "" {
		return string(PaymentStatusPending)
	}
	return name
}
