package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/midjourney-go/pkg/history"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

var variationCmd = &cobra.Command{
	Use:   "variation <message-id> <index>",
	Short: "Vary one image of a finished grid",
	Long: `Request a variation of image <index> (0-4) of a finished job.

The job is looked up by its message id in the history of the context.

Examples:
  midjourney variation 1234567890123456789 0
  midjourney variation 1234567890123456789 3 --save s3://images/mj`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}
		if index < 0 || index > midjourney.MaxVariationIndex {
			return fmt.Errorf("index %d out of range 0..%d", index, midjourney.MaxVariationIndex)
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

		parent, err := hist.Get(reqCtx, args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("job %s not found in history of context %q", args[0], c.Name)
		}
		if err != nil {
			return err
		}

		save, _ := cmd.Flags().GetString("save")
		store, err := openStore(reqCtx, c, save)
		if err != nil {
			return err
		}

		client, err := connect(reqCtx, c)
		if err != nil {
			return err
		}
		defer client.Close()

		outcomes, err := client.Variation(reqCtx, parent.Outcome(), index)
		if err != nil {
			return err
		}
		rec, err := (&job{
			kind:    midjourney.CommandVariation,
			history: hist,
			store:   store,
			parent:  parent.MessageID,
			index:   index,
		}).run(reqCtx, outcomes)
		if err != nil {
			return err
		}
		return outputResult(rec)
	},
}

func init() {
	variationCmd.Flags().String("save", "", "save the image to a directory or s3://bucket/prefix")
}
