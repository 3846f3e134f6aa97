package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "unknown order",
			err:            errors.Wrap(domain.ErrOrderNotFound, "failed to load order 7"),
			expectedStatus: 404,
		},
		{
			name: "illegal transition",
			err: &domain.InvalidStateError{
				OrderID:    7,
				Current:    domain.StatusShipping,
				Transition: "approve",
			},
			expectedStatus: 409,
		},
		{
			name:           "lost optimistic-lock race",
			err:            domain.ErrVersionConflict,
			expectedStatus: 409,
		},
		{
			name:           "collaborator down",
			err:            errors.Wrap(application.ErrCollaboratorUnavailable, "inventory circuit open"),
			expectedStatus: 503,
		},
		{
			name:           "refused input",
			err:            &application.ValidationError{Err: errors.New("carrier and tracking number are required")},
			expectedStatus: 400,
		},
		{
			name:           "wrapped refused input",
			err:            errors.Wrap(&application.ValidationError{Err: errors.New("member 5 not found")}, "create order"),
			expectedStatus: 400,
		},
		{
			// An infrastructure error whose message happens to mention "not
			// found" is still a server fault, not bad input.
			name:           "transient error mentioning not found",
			err:            errors.New("dial tcp: host not found"),
			expectedStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
