package midjourney

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultGatewayURL is the gateway websocket endpoint.
	DefaultGatewayURL = "wss://gateway.discord.gg/?v=9&encoding=json"

	// DefaultAPIBaseURL is the REST endpoint used for interactions.
	DefaultAPIBaseURL = "https://discord.com/api/v9"

	// DefaultApplicationID is the Midjourney bot application id.
	DefaultApplicationID = "936929561302675456"

	// DefaultImagineCommandID is the id of the /imagine application command.
	DefaultImagineCommandID = "938956540159881230"

	// DefaultImagineCommandVersion is the version of the /imagine command.
	DefaultImagineCommandVersion = "1237876415471554623"

	// DefaultHeartbeatInterval is the fixed keep-alive period.
	DefaultHeartbeatInterval = 40 * time.Second

	// DefaultQueueCapacity bounds the signals buffered per command.
	DefaultQueueCapacity = 64

	// DefaultTimeout is the HTTP and websocket handshake timeout.
	DefaultTimeout = 30 * time.Second
)

// Config identifies the account and the channel the bot is driven in.
type Config struct {
	// Token is the account credential sent on identify and as the
	// Authorization header of interactions. Required.
	Token string `json:"token" yaml:"token"`

	// GuildID is the server the channel belongs to. Empty for DMs.
	GuildID string `json:"guild_id,omitempty" yaml:"guild_id,omitempty"`

	// ChannelID is the channel commands are issued in. Required.
	ChannelID string `json:"channel_id" yaml:"channel_id"`

	// ApplicationID is the bot application id. Defaults to DefaultApplicationID.
	ApplicationID string `json:"application_id,omitempty" yaml:"application_id,omitempty"`

	// ImagineCommandID and ImagineCommandVersion identify the /imagine
	// command. They default to the published values.
	ImagineCommandID      string `json:"imagine_command_id,omitempty" yaml:"imagine_command_id,omitempty"`
	ImagineCommandVersion string `json:"imagine_command_version,omitempty" yaml:"imagine_command_version,omitempty"`

	// SessionID is sent with every interaction. A random one is generated
	// when empty.
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Token) == "" {
		errs = append(errs, errors.New("midjourney: config: token is required"))
	}
	if strings.TrimSpace(c.ChannelID) == "" {
		errs = append(errs, errors.New("midjourney: config: channel_id is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if c.ApplicationID == "" {
		c.ApplicationID = DefaultApplicationID
	}
	if c.ImagineCommandID == "" {
		c.ImagineCommandID = DefaultImagineCommandID
	}
	if c.ImagineCommandVersion == "" {
		c.ImagineCommandVersion = DefaultImagineCommandVersion
	}
	if c.SessionID == "" {
		c.SessionID = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	return nil
}

// clientConfig holds the transport options.
type clientConfig struct {
	gatewayURL        string
	apiBaseURL        string
	httpClient        *http.Client
	handshakeTimeout  time.Duration
	heartbeatInterval time.Duration
	queueCapacity     int
	logger            *slog.Logger
	worker            uint8
}

// Option configures the Client.
type Option func(*clientConfig)

// WithGatewayURL sets the gateway websocket URL.
func WithGatewayURL(url string) Option {
	return func(c *clientConfig) {
		c.gatewayURL = url
	}
}

// WithAPIBaseURL sets the REST base URL for interactions.
func WithAPIBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.apiBaseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client for interactions.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithHandshakeTimeout sets the websocket handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.handshakeTimeout = d
	}
}

// WithHeartbeatInterval sets the keep-alive period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		c.heartbeatInterval = d
	}
}

// WithQueueCapacity bounds the number of undelivered signals held per
// command. Zero means unbounded.
func WithQueueCapacity(n int) Option {
	return func(c *clientConfig) {
		c.queueCapacity = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithWorkerID sets the worker bits of generated nonces, for processes
// sharing one account.
func WithWorkerID(id uint8) Option {
	return func(c *clientConfig) {
		c.worker = id
	}
}
