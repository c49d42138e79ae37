package translate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// completeFunc sends one prompt to a model and returns its raw text reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// batcher splits items into prompts of BatchSize and runs them through a
// provider's completeFunc. Providers embed it to get Translate and
// TranslateWithConcurrency.
type batcher struct {
	provider string
	options  Options
	complete completeFunc
}

func newBatcher(provider string, opts Options, complete completeFunc) *batcher {
	return &batcher{provider: provider, options: opts, complete: complete}
}

func (b *batcher) batchSize() int {
	if b.options.BatchSize > 0 {
		return b.options.BatchSize
	}
	return DefaultBatchSize
}

// Translate sends batches one after another.
func (b *batcher) Translate(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	return b.TranslateWithConcurrency(ctx, items, 1)
}

// TranslateWithConcurrency lets up to concurrency workers (3 when <= 0) pull
// batches from a shared queue. The first failing batch cancels the rest.
func (b *batcher) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	if len(items) == 0 {
		return []TranslationResult{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	batches := splitBatches(items, b.batchSize())
	if len(batches) == 1 {
		return b.translateBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []TranslationResult
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Go(func() {
			for batchIdx := range workChan {
				if ctx.Err() != nil {
					return
				}
				results, err := b.translateBatch(ctx, batches[batchIdx])
				if err != nil {
					cancel()
				}
				resultChan <- batchResult{Index: batchIdx, Results: results, Error: err}
			}
		})
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var (
		all      []TranslationResult
		done     int
		firstErr error
	)
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", result.Index, result.Error)
			}
			continue
		}
		done++
		all = append(all, result.Results...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if done < len(batches) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("translation stopped before all batches completed")
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

func splitBatches(items []TranslationItem, size int) [][]TranslationItem {
	var batches [][]TranslationItem
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}

func (b *batcher) translateBatch(
	ctx context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	reply, err := b.complete(ctx, BuildPrompt(b.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if reply == "" {
		return nil, fmt.Errorf("no text in %s response", b.provider)
	}
	return parseReply(reply, items)
}

// parseReply decodes a model reply and checks it answers exactly the
// indices that were asked.
func parseReply(reply string, items []TranslationItem) ([]TranslationResult, error) {
	cleaned := cleanJSONResponse(reply)

	results, err := extractTranslationResults(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)",
			err, truncateString(cleaned, 200))
	}

	if len(results) != len(items) {
		return nil, fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}

	want := make(map[int]bool, len(items))
	for _, item := range items {
		want[item.Index] = true
	}
	for _, r := range results {
		if !want[r.Index] {
			return nil, fmt.Errorf("unexpected index %d in response", r.Index)
		}
		delete(want, r.Index)
	}
	return results, nil
}
