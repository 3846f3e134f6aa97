package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
)

// CollaboratorConfig tunes one synchronous collaborator client.
type CollaboratorConfig struct {
	BaseURL             string
	Timeout             time.Duration
	BreakerMaxFailures  uint32
	BreakerOpenInterval time.Duration
}

func (c CollaboratorConfig) withDefaults() CollaboratorConfig {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = 5
	}
	if c.BreakerOpenInterval <= 0 {
		c.BreakerOpenInterval = 30 * time.Second
	}
	return c
}

// collaboratorClient is the shared HTTP plumbing for the inventory and user
// clients: a timeout-bound http.Client behind a circuit breaker. Timeouts and
// an open breaker both surface as application.ErrCollaboratorUnavailable so
// callers can answer with service unavailable instead of a generic failure.
type collaboratorClient struct {
	name    string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func newCollaboratorClient(name string, cfg CollaboratorConfig, logger *zap.Logger) *collaboratorClient {
	cfg = cfg.withDefaults()

	c := &collaboratorClient{
		name:    name,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named(name + "-client"),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.BreakerOpenInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A 404 is an answer, not an outage.
			return err == nil || err == errNotFound
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// getJSON performs a GET against the collaborator through the breaker and
// decodes the response body into out.
func (c *collaboratorClient) getJSON(ctx context.Context, path string, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build request")
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.client.Do(req)
		if err != nil {
			return nil, errors.Wrapf(application.ErrCollaboratorUnavailable, "%s: %v", c.name, err)
		}
		defer func() {
			io.Copy(io.Discard, res.Body)
			res.Body.Close()
		}()

		switch {
		case res.StatusCode == http.StatusNotFound:
			return nil, errNotFound
		case res.StatusCode >= http.StatusInternalServerError:
			return nil, errors.Wrapf(application.ErrCollaboratorUnavailable, "%s answered %d", c.name, res.StatusCode)
		case res.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%s answered unexpected status %d", c.name, res.StatusCode)
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s response", c.name)
		}
		return nil, nil
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.Wrapf(application.ErrCollaboratorUnavailable, "%s circuit open", c.name)
	}
	return err
}

// errNotFound is internal to the collaborator clients; it keeps a 404 from
// counting as a breaker failure classification mistake at call sites.
var errNotFound = errors.New("collaborator resource not found")
