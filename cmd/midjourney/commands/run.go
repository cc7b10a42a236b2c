package commands

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/haivivi/midjourney-go/pkg/cli"
	"github.com/haivivi/midjourney-go/pkg/history"
	"github.com/haivivi/midjourney-go/pkg/midjourney"
	"github.com/haivivi/midjourney-go/pkg/storage"
)

// job is the shared tail of imagine and variation: follow the outcome
// sequence, record the finished job and save its image.
type job struct {
	kind    midjourney.CommandKind
	history history.Store
	store   storage.Store
	parent  string
	index   int
}

func (j *job) run(ctx context.Context, outcomes iter.Seq2[*midjourney.Outcome, error]) (*history.Record, error) {
	progress := cli.NewProgress()
	start := time.Now()

	var finished *midjourney.Outcome
	for o, err := range outcomes {
		if err != nil {
			if apiErr, ok := midjourney.AsError(err); ok && apiErr.IsAuth() {
				return nil, fmt.Errorf("%s rejected, check the context token: %w", j.kind, err)
			}
			return nil, fmt.Errorf("%s failed: %w", j.kind, err)
		}
		fmt.Fprintln(os.Stderr, progress.Line(o))
		if o.Finished() {
			finished = o
		}
	}
	if finished == nil {
		return nil, fmt.Errorf("%s ended without a result", j.kind)
	}
	slog.Debug("job finished", "kind", j.kind, "message_id", finished.MessageID, "elapsed", cli.FormatDuration(time.Since(start)))

	rec, err := history.FromOutcome(j.kind, finished)
	if err != nil {
		return nil, err
	}
	rec.Parent = j.parent
	rec.Index = j.index

	if j.store != nil {
		loc, err := storage.Save(ctx, j.store, nil, finished)
		if err != nil {
			slog.Error("save image", "message_id", finished.MessageID, "error", err)
		} else {
			rec.Location = loc
			cli.PrintSuccess("Saved %s", loc)
		}
	}

	if err := j.history.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("record history: %w", err)
	}
	return rec, nil
}

// openStore opens the image destination: the --save flag, else the
// context's default, else nothing.
func openStore(ctx context.Context, c *cli.Context, flag string) (storage.Store, error) {
	spec := flag
	if spec == "" {
		spec = c.Save
	}
	if spec == "" {
		return nil, nil
	}
	return storage.Open(ctx, spec, c.S3Config())
}
