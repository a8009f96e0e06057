// internal/common/camunda/client.go
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"provider-funnel/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client is the gateway connection shared by the funnel job workers and the
// completion publisher. Calls made through Do are retried while the gateway
// reports a transient failure.
type Client struct {
	zb     zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds the retries Do makes. MaxRetries counts the calls after
// the first one.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

// wait returns the pause before the given retry (1-based): BaseDelay doubled
// per retry, capped at MaxDelay.
func (r *RetryConfig) wait(retry int) time.Duration {
	d := r.BaseDelay
	for i := 1; i < retry && d < r.MaxDelay; i++ {
		d *= 2
	}
	if d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// NewClientWithConfig dials the gateway and fails unless a topology request
// answers within ConnectionTimeout.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	zb, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}
	c := &Client{zb: zb, config: config}
	if err := c.HealthCheck(context.Background()); err != nil {
		zb.Close()
		return nil, err
	}
	return c, nil
}

// GetClient exposes the raw gateway client for job polling.
func (c *Client) GetClient() zbc.Client {
	return c.zb
}

func (c *Client) Close() error {
	return c.zb.Close()
}

func (c *Client) retry() *RetryConfig {
	if c.config == nil || c.config.RetryConfig == nil {
		return DefaultRetryConfig
	}
	return c.config.RetryConfig
}

// Do runs call until it succeeds, fails permanently, or the retry budget is
// spent. The returned error is a StandardError classified by gRPC status,
// except when ctx ends between attempts.
func (c *Client) Do(ctx context.Context, op string, call func(context.Context) error) error {
	retry := c.retry()
	for attempt := 1; ; attempt++ {
		err := call(ctx)
		if err == nil {
			return nil
		}
		if !transient(err) || attempt > retry.MaxRetries {
			return classify(op, attempt, err)
		}
		select {
		case <-time.After(retry.wait(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("zeebe %s abandoned after %d attempt(s): %w", op, attempt, ctx.Err())
		}
	}
}

// transportFailures are matched against errors that never reached the
// gateway and so carry no gRPC status.
var transportFailures = []string{"connection refused", "connection reset", "broken pipe", "no such host"}

func transient(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	case codes.Unknown:
		msg := strings.ToLower(err.Error())
		for _, f := range transportFailures {
			if strings.Contains(msg, f) {
				return true
			}
		}
	}
	return false
}

func classify(op string, attempts int, err error) error {
	wrapped := fmt.Errorf("zeebe %s failed after %d attempt(s): %w", op, attempts, err)
	if transient(err) {
		return errors.NewEngineUnavailableError(op, wrapped)
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return errors.NewUnauthorizedError(wrapped.Error())
	}
	return errors.NewInternalError(wrapped)
}

// HealthCheck asks the gateway for its topology and fails if no broker is
// known to it.
func (c *Client) HealthCheck(ctx context.Context) error {
	timeout := 10 * time.Second
	if c.config != nil && c.config.ConnectionTimeout > 0 {
		timeout = c.config.ConnectionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	topology, err := c.zb.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe gateway %s unreachable: %w", c.config.GatewayAddress, err)
	}
	if len(topology.GetBrokers()) == 0 {
		return fmt.Errorf("zeebe gateway %s reports no brokers", c.config.GatewayAddress)
	}
	return nil
}
