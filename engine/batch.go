package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one entry of a batch evaluation, in input order
type BatchItem struct {
	Input  string
	Result *Result
	Err    error
}

// EvaluateBatch evaluates urls concurrently, bounded by Config.Workers.
// Items not started before ctx is cancelled carry ctx.Err().
func (e *Engine) EvaluateBatch(ctx context.Context, urls []string) []BatchItem {
	items := make([]BatchItem, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i, u := range urls {
		items[i].Input = u

		if err := gctx.Err(); err != nil {
			items[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = e.Evaluate(u)
			return nil
		})
	}

	_ = g.Wait()

	return items
}
