package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/partsnet/order-system/order-service/domain"
	"github.com/partsnet/order-system/shared/saga"
)

// ErrCollaboratorUnavailable classifies a timeout or an open circuit breaker
// on a synchronous collaborator call. Surfaced to HTTP callers as service
// unavailable; asynchronous steps are left for the reaper instead.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// ValidationError marks input a use case refused before touching the order.
// HTTP callers answer with bad request.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidInput(err error) error {
	return &ValidationError{Err: err}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PartInfo is the inventory snapshot for one part at order-creation time.
type PartInfo struct {
	PartID   int64  `json:"part_id"`
	Price    int64  `json:"price"`
	Cost     int64  `json:"cost"`
	Category string `json:"category"`
	Location string `json:"location"`
}

// InventoryClient looks up part snapshots from the inventory service.
type InventoryClient interface {
	GetParts(ctx context.Context, partIDs []int64) (map[int64]PartInfo, error)
}

// MemberInfo is the user-service view of an account.
type MemberInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserClient looks up member accounts from the user service.
type UserClient interface {
	GetMember(ctx context.Context, memberID int64) (*MemberInfo, error)
}

// Notifier emits notification intents towards the notification sink.
// Fire-and-forget: implementations log delivery failures and never return
// them, so a lost notification cannot fail the transition that produced it.
type Notifier interface {
	Notify(ctx context.Context, order *domain.Order, category, message string, step saga.Step)
}
