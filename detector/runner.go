// detector/runner.go
package detector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Runner executes detectors against lists of URLs
type Runner struct {
	registry *Registry
	config   *Config
	logger   Logger
}

type Logger interface {
	Printf(format string, v ...interface{})
}

// NewRunner creates a new detector runner
func NewRunner(registry *Registry, config *Config, logger Logger) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Runner{
		registry: registry,
		config:   config,
		logger:   logger,
	}
}

// RunOnURLs runs one detector on every URL and returns matches and errors
// ordered by input position
func (r *Runner) RunOnURLs(ctx context.Context, detectorName string, urls []string) ([]*Result, error) {
	detector, err := r.registry.Get(detectorName)
	if err != nil {
		return nil, err
	}

	var results []*Result

	if r.config.Parallel && len(urls) > 1 {
		results = r.runParallel(ctx, detector, urls)
	} else {
		results = r.runSequential(ctx, detector, urls)
	}

	// Filter by minimum confidence
	filtered := make([]*Result, 0, len(results))
	for _, res := range results {
		if res.Error != nil {
			if r.logger != nil {
				r.logger.Printf("detector %s failed on %q: %v", detectorName, res.URL, res.Error)
			}
			filtered = append(filtered, res)
			continue
		}
		if res.Match != nil && res.Match.Confidence >= r.config.MinConfidence {
			filtered = append(filtered, res)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Index < filtered[j].Index
	})

	return filtered, nil
}

func (r *Runner) runSequential(ctx context.Context, detector Detector, urls []string) []*Result {
	results := make([]*Result, 0)

	for i, url := range urls {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		result := r.detectOne(ctx, detector, i, url)
		if result.Match != nil || result.Error != nil {
			results = append(results, result)
		}
	}

	return results
}

func (r *Runner) runParallel(ctx context.Context, detector Detector, urls []string) []*Result {
	type job struct {
		index int
		url   string
	}

	jobs := make(chan job, len(urls))
	resultsChan := make(chan *Result, len(urls))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < r.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				result := r.detectOne(ctx, detector, j.index, j.url)
				if result.Match != nil || result.Error != nil {
					resultsChan <- result
				}
			}
		}()
	}

	// Send jobs
	for i, url := range urls {
		jobs <- job{index: i, url: url}
	}
	close(jobs)

	// Wait for completion
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	results := make([]*Result, 0)
	for result := range resultsChan {
		results = append(results, result)
	}

	return results
}

func (r *Runner) detectOne(ctx context.Context, detector Detector, index int, url string) *Result {
	result := &Result{
		Index:        index,
		URL:          url,
		DetectorName: detector.Name(),
		DetectedAt:   time.Now(),
	}

	match, err := detector.Detect(ctx, url)
	result.Match = match
	result.Error = err

	return result
}

// RunMultipleDetectors runs multiple detectors on the same URLs
func (r *Runner) RunMultipleDetectors(ctx context.Context, detectorNames []string, urls []string) (map[string][]*Result, error) {
	allResults := make(map[string][]*Result)

	for _, name := range detectorNames {
		results, err := r.RunOnURLs(ctx, name, urls)
		if err != nil {
			return nil, fmt.Errorf("detector %s failed: %w", name, err)
		}
		allResults[name] = results
	}

	return allResults, nil
}

// Stats represents detection statistics
type Stats struct {
	TotalURLs    int
	MatchedCount int
	MatchRate    float64
	ByReason     map[string]int
	ByCategory   map[string]int
}

// CalculateStats computes statistics from results
func CalculateStats(results []*Result, totalURLs int) *Stats {
	stats := &Stats{
		TotalURLs:  totalURLs,
		ByReason:   make(map[string]int),
		ByCategory: make(map[string]int),
	}

	for _, res := range results {
		if res.Match == nil {
			continue
		}

		stats.MatchedCount++
		stats.ByReason[res.Match.Reason]++
		stats.ByCategory[res.Match.Category]++
	}

	if totalURLs > 0 {
		stats.MatchRate = float64(stats.MatchedCount) / float64(totalURLs)
	}

	return stats
}
