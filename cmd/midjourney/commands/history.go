package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/midjourney-go/pkg/cli"
	"github.com/haivivi/midjourney-go/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and show finished jobs",
	Long: `Finished jobs are recorded per context in ~/.midjourney/history/<context>.

Examples:
  midjourney history list
  midjourney history list --query '.[] | select(.command == "imagine") | .uri'
  midjourney history show 1234567890123456789 --json`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finished jobs, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		hist, err := openHistory(c)
		if err != nil {
			return err
		}
		defer hist.Close()

		records := []*history.Record{}
		for rec, err := range hist.List(context.Background()) {
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return outputResult(records)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <message-id>",
	Short: "Show one finished job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		hist, err := openHistory(c)
		if err != nil {
			return err
		}
		defer hist.Close()

		rec, err := hist.Get(context.Background(), args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("job %s not found", args[0])
		}
		if err != nil {
			return err
		}
		return outputResult(rec)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <message-id>",
	Short: "Remove a job from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		hist, err := openHistory(c)
		if err != nil {
			return err
		}
		defer hist.Close()

		if err := hist.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Job %s removed", args[0])
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}
