package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/midjourney-go/pkg/cli"
	"github.com/haivivi/midjourney-go/pkg/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

A context names one account token and the channel commands are issued in,
similar to kubectl's context management.

Configuration is stored in ~/.midjourney/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  midjourney config add-context me --token TOKEN --guild-id GUILD --channel-id CHANNEL
  midjourney config add-context r2 --token TOKEN --channel-id CHANNEL \
    --save s3://images/mj --s3-endpoint https://ACCOUNT.r2.cloudflarestorage.com --s3-region auto`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		str := func(name string) string {
			v, _ := f.GetString(name)
			return v
		}

		ctx := &cli.Context{
			Token:         str("token"),
			GuildID:       str("guild-id"),
			ChannelID:     str("channel-id"),
			ApplicationID: str("application-id"),
			GatewayURL:    str("gateway-url"),
			APIBaseURL:    str("api-base-url"),
			Save:          str("save"),
		}
		if ctx.Token == "" {
			return fmt.Errorf("--token is required")
		}
		if ctx.ChannelID == "" {
			return fmt.Errorf("--channel-id is required")
		}
		timeout, err := f.GetInt("timeout")
		if err != nil {
			return fmt.Errorf("failed to read 'timeout' flag: %w", err)
		}
		ctx.Timeout = timeout

		s3cfg := storage.S3Config{
			Region:          str("s3-region"),
			Endpoint:        str("s3-endpoint"),
			AccessKeyID:     str("s3-access-key-id"),
			SecretAccessKey: str("s3-secret-access-key"),
		}
		s3cfg.PathStyle, _ = f.GetBool("s3-path-style")
		if s3cfg != (storage.S3Config{}) {
			ctx.S3 = &s3cfg
		}

		if err := globalConfig.AddContext(args[0], ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added successfully", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		if globalConfig.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}
		fmt.Println(globalConfig.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := globalConfig.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tGUILD\tCHANNEL\tSAVE")
		for _, name := range names {
			ctx := globalConfig.Contexts[name]
			current := ""
			if name == globalConfig.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, ctx.GuildID, ctx.ChannelID, ctx.Save)
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file: %s\n", globalConfig.Path())
		fmt.Printf("Current context: %s\n", globalConfig.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(globalConfig.Contexts))

		for _, name := range globalConfig.ListContexts() {
			ctx := globalConfig.Contexts[name]
			fmt.Printf("\n  %s:\n", name)
			fmt.Printf("    Token: %s\n", cli.MaskToken(ctx.Token))
			if ctx.GuildID != "" {
				fmt.Printf("    Guild: %s\n", ctx.GuildID)
			}
			fmt.Printf("    Channel: %s\n", ctx.ChannelID)
			if ctx.Save != "" {
				fmt.Printf("    Save: %s\n", ctx.Save)
			}
			if ctx.S3 != nil {
				fmt.Printf("    S3: region=%s endpoint=%s key=%s\n",
					ctx.S3.Region, ctx.S3.Endpoint, cli.MaskToken(ctx.S3.AccessKeyID))
			}
			if ctx.Timeout > 0 {
				fmt.Printf("    Timeout: %ds\n", ctx.Timeout)
			}
		}
		return nil
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.String("token", "", "account token (required)")
	f.String("guild-id", "", "server id of the channel")
	f.String("channel-id", "", "channel to issue commands in (required)")
	f.String("application-id", "", "bot application id (default: Midjourney)")
	f.String("gateway-url", "", "gateway websocket URL (optional)")
	f.String("api-base-url", "", "REST API base URL (optional)")
	f.Int("timeout", 0, "HTTP and handshake timeout in seconds (optional)")
	f.String("save", "", "default image destination: directory or s3://bucket/prefix")
	f.String("s3-region", "", "S3 region")
	f.String("s3-endpoint", "", "S3 endpoint for compatible stores")
	f.String("s3-access-key-id", "", "S3 access key id")
	f.String("s3-secret-access-key", "", "S3 secret access key")
	f.Bool("s3-path-style", false, "use path-style S3 addressing")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
