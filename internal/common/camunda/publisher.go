// internal/common/camunda/publisher.go
package camunda

import (
	"context"
	"time"

	"provider-funnel/internal/common/logger"
)

type message struct {
	Name           string
	CorrelationKey string
	TTL            time.Duration
	Variables      interface{}
}

// Publisher sends Zeebe messages through the retrying client.
type Publisher struct {
	client  *Client
	send    func(ctx context.Context, m message) error
	ttl     time.Duration
	timeout time.Duration
	logger  logger.Logger
}

func NewPublisher(client *Client, ttl time.Duration, log logger.Logger) *Publisher {
	p := &Publisher{
		client:  client,
		ttl:     ttl,
		timeout: client.config.RequestTimeout,
		logger:  log.WithFields(map[string]interface{}{"component": "zeebe-publisher"}),
	}
	p.send = p.sendCommand
	return p
}

func (p *Publisher) sendCommand(ctx context.Context, m message) error {
	cmd, err := p.client.GetClient().NewPublishMessageCommand().
		MessageName(m.Name).
		CorrelationKey(m.CorrelationKey).
		TimeToLive(m.TTL).
		VariablesFromObject(m.Variables)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

// Publish correlates message name with correlationKey. Variables are
// serialised as JSON.
func (p *Publisher) Publish(ctx context.Context, name, correlationKey string, variables interface{}) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	m := message{Name: name, CorrelationKey: correlationKey, TTL: p.ttl, Variables: variables}
	err := p.client.Do(ctx, "publish "+name, func(ctx context.Context) error {
		return p.send(ctx, m)
	})
	if err != nil {
		p.logger.Warn("message publish failed", map[string]interface{}{
			"message":        name,
			"correlationKey": correlationKey,
			"error":          err.Error(),
		})
		return err
	}
	p.logger.Debug("message published", map[string]interface{}{
		"message":        name,
		"correlationKey": correlationKey,
	})
	return nil
}
