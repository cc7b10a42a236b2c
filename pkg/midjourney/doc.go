// Package midjourney drives the Midjourney bot over a Discord user session.
//
// A Client holds one gateway websocket session. Commands are submitted as
// interactions over HTTP, and the bot's replies arrive on the gateway as
// message create and update events. The client correlates those events back
// to the command that caused them and exposes each command as a sequence of
// outcomes.
//
// # Quick Start
//
//	client, err := midjourney.NewClient(midjourney.Config{
//	    Token:     "user-token",
//	    GuildID:   "guild-id",
//	    ChannelID: "channel-id",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	outcomes, err := client.Imagine(ctx, "a red fox in the snow")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var grid *midjourney.Outcome
//	for o, err := range outcomes {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if o.Finished() {
//	        grid = o
//	    }
//	}
//
//	// Vary the second image of the grid.
//	variations, err := client.Variation(ctx, grid, 1)
//
// # Correlation
//
// Every command carries a fresh nonce. The bot's first reply echoes it and
// is recorded as a placeholder. Edits of the placeholder report progress.
// The final image is posted as a new message without the nonce; it is
// matched to the oldest placeholder whose prompt (the text between the
// first pair of "**" markers) is equal.
//
// # Connection loss
//
// A Client connects once. When the gateway connection drops the state
// changes to StateDisconnected and observers registered with OnStateChange
// are notified; outcome sequences still waiting are ended only by their
// context or by Close.
package midjourney
