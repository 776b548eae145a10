package automation

import (
	"context"
	"sync"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
)

// runEnsemble runs every config on its own goroutine. Each run builds its
// own simulation and metrics, so nothing is shared between them. Results
// keep the order of cfgs; the first setup or context error by index is
// returned.
func runEnsemble(ctx context.Context, cfgs []*config.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(idx int, cfg *config.Config) {
			defer wg.Done()

			exp, err := experiment.FromConfig(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i, cfg)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
