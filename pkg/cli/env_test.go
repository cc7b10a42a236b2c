package cli

import "testing"

func TestApplyEnv(t *testing.T) {
	t.Setenv("MIDJOURNEY_TOKEN", "env-token")
	t.Setenv("MIDJOURNEY_SAVE", "s3://bucket/x")
	t.Setenv("MIDJOURNEY_GUILD_ID", "")
	t.Setenv("MIDJOURNEY_CHANNEL_ID", "")

	ctx := &Context{Name: "work", Token: "file-token", ChannelID: "c1", GuildID: "g1"}
	if err := ApplyEnv(ctx); err != nil {
		t.Fatal(err)
	}
	if ctx.Token != "env-token" || ctx.ChannelID != "c1" || ctx.GuildID != "g1" || ctx.Save != "s3://bucket/x" {
		t.Fatalf("ctx = %+v", ctx)
	}
}

func TestEnvContext(t *testing.T) {
	t.Setenv("MIDJOURNEY_TOKEN", "env-token")
	t.Setenv("MIDJOURNEY_CHANNEL_ID", "")

	if _, ok, err := EnvContext(); err != nil || ok {
		t.Fatalf("EnvContext without channel = (%v, %v)", ok, err)
	}

	t.Setenv("MIDJOURNEY_CHANNEL_ID", "c9")
	ctx, ok, err := EnvContext()
	if err != nil || !ok {
		t.Fatalf("EnvContext = (%v, %v)", ok, err)
	}
	if ctx.Name != EnvContextName || ctx.Token != "env-token" || ctx.ChannelID != "c9" {
		t.Fatalf("ctx = %+v", ctx)
	}
}
