package transcribe

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgpai22/tarjama/internal/audio"
	"github.com/mgpai22/tarjama/internal/subtitle"
)

// result of transcribing one chunk
type chunkResult struct {
	Index    int
	Segments []subtitle.Segment
	Error    error
}

// TranscribeChunks transcribes chunks with up to concurrency workers
// (3 when concurrency <= 0) and merges them in chunk order, shifting every
// segment by its chunk's start offset. The first failure cancels the rest.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for chunk := range workChan {
				if ctx.Err() != nil {
					return
				}
				segments, err := transcribeChunk(ctx, t, chunk)
				if err != nil {
					cancel()
				}
				resultChan <- chunkResult{
					Index:    chunk.Index,
					Segments: segments,
					Error:    err,
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	byIndex := make(map[int][]subtitle.Segment, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("chunk %d failed: %w", result.Index, result.Error)
			}
			continue
		}
		byIndex[result.Index] = result.Segments
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(byIndex) < len(chunks) {
		return nil, err
	}

	var all []subtitle.Segment
	for _, chunk := range chunks {
		all = append(all, byIndex[chunk.Index]...)
	}

	return &Result{
		Segments: all,
		Duration: chunks[len(chunks)-1].EndTime.Seconds(),
	}, nil
}

func transcribeChunk(
	ctx context.Context,
	t Transcriber,
	chunk audio.ChunkInfo,
) ([]subtitle.Segment, error) {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}

	offset := chunk.StartTime.Seconds()
	shifted := make([]subtitle.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		shifted[i] = subtitle.Segment{
			Start: seg.Start + offset,
			End:   seg.End + offset,
			Text:  seg.Text,
		}
	}
	return shifted, nil
}
