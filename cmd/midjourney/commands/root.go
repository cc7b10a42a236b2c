package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/midjourney-go/pkg/cli"
	"github.com/haivivi/midjourney-go/pkg/history"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	outputJSON  bool
	query       string
	verbose     bool

	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "midjourney",
	Short: "Midjourney bot CLI tool",
	Long: `Midjourney CLI - drive the Midjourney bot from the command line.

Commands are issued in a channel of your choice using your account token.
Progress is streamed to stderr; the finished job is printed to stdout and
recorded in the local history so that variations can be requested later.

Configuration is stored in ~/.midjourney/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Set up a new context
  midjourney config add-context me --token TOKEN --guild-id GUILD --channel-id CHANNEL

  # Generate a grid and save the image
  midjourney imagine "a red fox in the snow" --save ./images

  # Vary the third image of that grid
  midjourney variation 1234567890 2

  # List the image URLs of all finished jobs
  midjourney history list --query '.[].uri'
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.midjourney/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVarP(&query, "query", "q", "", "jq expression applied to the output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(imagineCmd)
	rootCmd.AddCommand(variationCmd)
	rootCmd.AddCommand(historyCmd)
}

func initConfig() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	globalConfig, err = cli.LoadConfigWithPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getContext returns the context selected by -c or the current one, with
// MIDJOURNEY_* environment overrides applied. Without any configured
// context the environment alone may define one.
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	ctx, err := globalConfig.ResolveContext(contextName)
	if err != nil {
		if contextName != "" {
			return nil, err
		}
		envCtx, ok, envErr := cli.EnvContext()
		if envErr != nil {
			return nil, envErr
		}
		if !ok {
			return nil, fmt.Errorf("no context specified. Use -c flag, set a default context with 'midjourney config use-context', or set %sTOKEN and %sCHANNEL_ID", cli.EnvPrefix, cli.EnvPrefix)
		}
		return envCtx, nil
	}
	resolved := *ctx
	if err := cli.ApplyEnv(&resolved); err != nil {
		return nil, err
	}
	return &resolved, nil
}

// outputResult prints result in the selected format.
func outputResult(result any) error {
	format := cli.FormatYAML
	if outputJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
		Query:  query,
	})
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openHistory opens the history database of a context.
func openHistory(ctx *cli.Context) (history.Store, error) {
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, err
	}
	store, err := history.OpenBadger(history.BadgerOptions{
		Dir:    paths.HistoryDir(ctx.Name),
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// connect creates a client for ctx and opens its gateway session.
func connect(reqCtx context.Context, ctx *cli.Context) (*midjourney.Client, error) {
	opts := append(ctx.Options(), midjourney.WithLogger(slog.Default()))
	client, err := midjourney.NewClient(ctx.ClientConfig(), opts...)
	if err != nil {
		return nil, err
	}
	client.OnStateChange(func(state midjourney.State, err error) {
		if err != nil {
			slog.Error("gateway", "state", state, "error", err)
			return
		}
		slog.Debug("gateway", "state", state)
	})
	if err := client.Connect(reqCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}
