package midjourney

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/haivivi/midjourney-go/pkg/snowflake"
)

// MaxVariationIndex is the largest index accepted by Variation.
const MaxVariationIndex = 4

// Client drives the bot over one gateway session.
type Client struct {
	config       Config
	opts         *clientConfig
	registry     *registry
	gateway      *gateway
	interactions *interactionClient
	nonces       *snowflake.Generator
	closed       atomic.Bool
}

// NewClient validates cfg and creates a client. Call Connect before
// issuing commands.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &clientConfig{
		gatewayURL:        DefaultGatewayURL,
		apiBaseURL:        DefaultAPIBaseURL,
		handshakeTimeout:  DefaultTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		queueCapacity:     DefaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.heartbeatInterval <= 0 {
		o.heartbeatInterval = DefaultHeartbeatInterval
	}

	reg := newRegistry(o.logger)
	return &Client{
		config:       cfg,
		opts:         o,
		registry:     reg,
		gateway:      newGateway(o.gatewayURL, cfg.Token, o, reg),
		interactions: newInteractionClient(o, cfg.Token),
		nonces:       snowflake.NewGenerator(o.worker, 0),
	}, nil
}

// Connect opens the gateway session. A client connects once; there is no
// reconnect.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.gateway.connect(ctx)
}

// State returns the gateway session state.
func (c *Client) State() State {
	return c.gateway.State()
}

// OnStateChange registers an observer of gateway state changes. A
// connection drop is reported here; outcome sequences still waiting are not
// failed by it.
func (c *Client) OnStateChange(fn StateObserver) {
	c.gateway.observe(fn)
}

// Close closes the gateway session and ends every outcome sequence still
// waiting with ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.gateway.close()
	c.registry.closeAll()
	return err
}

// Imagine issues /imagine with prompt. The command is submitted when the
// returned sequence is first iterated; the sequence yields progress outcomes
// and ends after the finish outcome or the first error.
func (c *Client) Imagine(ctx context.Context, prompt string) (iter.Seq2[*Outcome, error], error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	return c.stream(ctx, CommandImagine, func(nonce string) *interaction {
		return imagineInteraction(&c.config, nonce, prompt)
	}), nil
}

// Variation requests a variation of image index (0..4) of a finished grid.
// The index is checked before anything is sent.
func (c *Client) Variation(ctx context.Context, finished *Outcome, index int) (iter.Seq2[*Outcome, error], error) {
	if index < 0 || index > MaxVariationIndex {
		return nil, ErrInvalidIndex
	}
	if !finished.Finished() || finished.MessageID == "" || finished.Hash == "" {
		return nil, ErrNotFinished
	}
	job := *finished
	return c.stream(ctx, CommandVariation, func(nonce string) *interaction {
		return variationInteraction(&c.config, nonce, &job, index)
	}), nil
}
