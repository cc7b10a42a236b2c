// Package cli provides the configuration, output and terminal helpers of the
// midjourney command-line tool.
//
// Configuration lives in ~/.midjourney/config.yaml and holds named contexts,
// each with its own account token, channel and storage settings, similar to
// kubectl:
//
//	cfg, err := cli.LoadConfig()
//	ctx, err := cfg.ResolveContext("")
//	client, err := midjourney.NewClient(ctx.ClientConfig(), ctx.Options()...)
//
// Results are printed as YAML by default, as JSON with --json, and can be
// filtered with a jq expression:
//
//	cli.Output(records, cli.OutputOptions{Format: cli.FormatJSON, Query: ".[].uri"})
package cli
