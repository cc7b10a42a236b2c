package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
	"github.com/haivivi/midjourney-go/pkg/storage"
)

const (
	// DefaultBaseDir is the configuration directory under the home directory.
	DefaultBaseDir = ".midjourney"
	// DefaultConfigFile is the configuration filename.
	DefaultConfigFile = "config.yaml"
)

// Config is the CLI configuration file.
type Config struct {
	// CurrentContext is the name of the active context.
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts maps context names to their settings.
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one account and channel to drive the bot in.
type Context struct {
	Name string `yaml:"name"`

	// Token is the account token. Required.
	Token string `yaml:"token"`

	// GuildID and ChannelID locate the channel. ChannelID is required.
	GuildID   string `yaml:"guild_id,omitempty"`
	ChannelID string `yaml:"channel_id"`

	// ApplicationID overrides the bot application id.
	ApplicationID string `yaml:"application_id,omitempty"`

	// GatewayURL and APIBaseURL override the platform endpoints.
	GatewayURL string `yaml:"gateway_url,omitempty"`
	APIBaseURL string `yaml:"api_base_url,omitempty"`

	// Timeout is the HTTP and handshake timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// Save is the default image destination: a directory or s3://bucket/prefix.
	Save string `yaml:"save,omitempty"`

	// S3 holds the credentials for s3:// destinations.
	S3 *storage.S3Config `yaml:"s3,omitempty"`
}

// LoadConfig loads ~/.midjourney/config.yaml, creating it if missing.
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path.
func LoadConfigWithPath(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	cfg.configPath = configPath
	return cfg, nil
}

// Save writes the configuration with owner-only permissions; it holds
// account tokens.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds or replaces a context. The first context added becomes
// the current one.
func (c *Config) AddContext(name string, ctx *Context) error {
	if ctx.Token == "" || ctx.ChannelID == "" {
		return fmt.Errorf("context %q needs a token and a channel id", name)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a context by name.
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one if name is
// empty.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		if c.CurrentContext == "" {
			return nil, fmt.Errorf("no current context set")
		}
		name = c.CurrentContext
	}
	return c.GetContext(name)
}

// ListContexts returns the context names in sorted order.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ClientConfig returns the client configuration of the context.
func (ctx *Context) ClientConfig() midjourney.Config {
	return midjourney.Config{
		Token:         ctx.Token,
		GuildID:       ctx.GuildID,
		ChannelID:     ctx.ChannelID,
		ApplicationID: ctx.ApplicationID,
	}
}

// Options returns the client options of the context.
func (ctx *Context) Options() []midjourney.Option {
	var opts []midjourney.Option
	if ctx.GatewayURL != "" {
		opts = append(opts, midjourney.WithGatewayURL(ctx.GatewayURL))
	}
	if ctx.APIBaseURL != "" {
		opts = append(opts, midjourney.WithAPIBaseURL(ctx.APIBaseURL))
	}
	if ctx.Timeout > 0 {
		opts = append(opts, midjourney.WithHandshakeTimeout(time.Duration(ctx.Timeout)*time.Second))
	}
	return opts
}

// S3Config returns the S3 settings of the context, or the zero value.
func (ctx *Context) S3Config() storage.S3Config {
	if ctx.S3 == nil {
		return storage.S3Config{}
	}
	return *ctx.S3
}

// MaskToken masks a token for display.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
