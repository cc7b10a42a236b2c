package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/midjourney-go/pkg/cli"
	"github.com/haivivi/midjourney-go/pkg/history"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

// ImagineRequest is the request file of the imagine command.
type ImagineRequest struct {
	Prompt string `json:"prompt" yaml:"prompt"`

	// Save overrides the image destination.
	Save string `json:"save,omitempty" yaml:"save,omitempty"`

	// Variations lists grid indexes (0-4) to vary once the grid is done.
	Variations []int `json:"variations,omitempty" yaml:"variations,omitempty"`
}

var imagineCmd = &cobra.Command{
	Use:   "imagine [prompt]",
	Short: "Generate an image grid from a prompt",
	Long: `Issue /imagine and wait for the finished grid.

Progress is printed to stderr. The finished job is recorded in history and
printed to stdout.

Example request file (imagine.yaml):
  prompt: a red fox in the snow --ar 3:2
  save: ./images
  variations: [0, 2]

Examples:
  midjourney imagine "a red fox in the snow"
  midjourney imagine -f imagine.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req ImagineRequest
		file, _ := cmd.Flags().GetString("file")
		if file != "" {
			if err := cli.LoadRequest(file, &req); err != nil {
				return err
			}
		}
		if len(args) == 1 {
			req.Prompt = args[0]
		}
		if strings.TrimSpace(req.Prompt) == "" {
			return fmt.Errorf("a prompt or -f request file is required")
		}
		for _, i := range req.Variations {
			if i < 0 || i > midjourney.MaxVariationIndex {
				return fmt.Errorf("variation index %d out of range 0..%d", i, midjourney.MaxVariationIndex)
			}
		}
		if save, _ := cmd.Flags().GetString("save"); save != "" {
			req.Save = save
		}

		c, err := getContext()
		if err != nil {
			return err
		}
		reqCtx, cancel := signalContext()
		defer cancel()

		hist, err := openHistory(c)
		if err != nil {
			return err
		}
		defer hist.Close()
		store, err := openStore(reqCtx, c, req.Save)
		if err != nil {
			return err
		}

		client, err := connect(reqCtx, c)
		if err != nil {
			return err
		}
		defer client.Close()

		outcomes, err := client.Imagine(reqCtx, req.Prompt)
		if err != nil {
			return err
		}
		grid, err := (&job{kind: midjourney.CommandImagine, history: hist, store: store}).run(reqCtx, outcomes)
		if err != nil {
			return err
		}

		results := []*history.Record{grid}
		for _, index := range req.Variations {
			outcomes, err := client.Variation(reqCtx, grid.Outcome(), index)
			if err != nil {
				return err
			}
			rec, err := (&job{
				kind:    midjourney.CommandVariation,
				history: hist,
				store:   store,
				parent:  grid.MessageID,
				index:   index,
			}).run(reqCtx, outcomes)
			if err != nil {
				return err
			}
			results = append(results, rec)
		}

		if len(results) == 1 {
			return outputResult(grid)
		}
		return outputResult(results)
	},
}

func init() {
	imagineCmd.Flags().StringP("file", "f", "", "request file (YAML or JSON, - for stdin)")
	imagineCmd.Flags().String("save", "", "save the image to a directory or s3://bucket/prefix")
}
