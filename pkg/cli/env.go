package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes the environment variables that override a context.
const EnvPrefix = "MIDJOURNEY_"

// EnvContextName names the context built from the environment alone.
const EnvContextName = "env"

// envOverrides are read from MIDJOURNEY_TOKEN, MIDJOURNEY_GUILD_ID,
// MIDJOURNEY_CHANNEL_ID and MIDJOURNEY_SAVE.
type envOverrides struct {
	Token     string `env:"TOKEN"`
	GuildID   string `env:"GUILD_ID"`
	ChannelID string `env:"CHANNEL_ID"`
	Save      string `env:"SAVE"`
}

func loadEnv() (envOverrides, error) {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return o, fmt.Errorf("failed to read environment: %w", err)
	}
	return o, nil
}

// ApplyEnv overrides the fields of ctx that are set in the environment.
func ApplyEnv(ctx *Context) error {
	o, err := loadEnv()
	if err != nil {
		return err
	}
	if o.Token != "" {
		ctx.Token = o.Token
	}
	if o.GuildID != "" {
		ctx.GuildID = o.GuildID
	}
	if o.ChannelID != "" {
		ctx.ChannelID = o.ChannelID
	}
	if o.Save != "" {
		ctx.Save = o.Save
	}
	return nil
}

// EnvContext builds a context from the environment. It reports false when
// the token or the channel id is not set.
func EnvContext() (*Context, bool, error) {
	ctx := &Context{Name: EnvContextName}
	if err := ApplyEnv(ctx); err != nil {
		return nil, false, err
	}
	if ctx.Token == "" || ctx.ChannelID == "" {
		return nil, false, nil
	}
	return ctx, true, nil
}
