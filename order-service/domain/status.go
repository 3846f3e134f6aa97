package domain

// Status represents the order saga status
type Status string

const (
	StatusOrderCompleted   Status = "ORDER_COMPLETED"
	StatusPayCompleted     Status = "PAY_COMPLETED"
	StatusFailed           Status = "FAILED"
	StatusPendingApproval  Status = "PENDING_APPROVAL"
	StatusApprovalOrder    Status = "APPROVAL_ORDER"
	StatusPendingShipping  Status = "PENDING_SHIPPING"
	StatusShipping         Status = "SHIPPING"
	StatusPendingReceiving Status = "PENDING_RECEIVING"
	StatusReceived         Status = "RECEIVED"
	StatusCancelled        Status = "CANCELLED"
	StatusRejected         Status = "REJECTED"
	StatusRefundRejected   Status = "REFUND_REJECTED"
)

// transitions is the single source of truth for legal status edges. Every
// transition method checks it before mutating, which is what turns a
// duplicate or out-of-order reply into a detectable rejection instead of
// silent corruption.
var transitions = map[Status][]Status{
	StatusOrderCompleted:   {StatusPayCompleted, StatusFailed, StatusPendingApproval, StatusCancelled, StatusRejected},
	StatusPayCompleted:     {StatusPendingApproval, StatusCancelled, StatusRejected},
	StatusPendingApproval:  {StatusApprovalOrder, StatusOrderCompleted},
	StatusApprovalOrder:    {StatusPendingShipping, StatusCancelled},
	StatusPendingShipping:  {StatusShipping},
	StatusShipping:         {StatusPendingReceiving},
	StatusPendingReceiving: {StatusReceived, StatusShipping},
	StatusCancelled:        {StatusRefundRejected},
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the edge s -> next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InFlight reports whether the status awaits an asynchronous saga reply.
// Orders in these states carry an approval attempt id and are watched by the
// timeout reaper.
func (s Status) InFlight() bool {
	return s == StatusPendingApproval || s == StatusPendingReceiving
}

// Terminal reports whether the order settled. Terminal orders are retained
// for audit and never transition again, except CANCELLED which may still
// record a failed refund.
func (s Status) Terminal() bool {
	switch s {
	case StatusReceived, StatusFailed, StatusRejected, StatusRefundRejected:
		return true
	}
	return false
}
