package clap

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// BatchOptions controls batch captioning.
type BatchOptions struct {
	// TopK is the number of tags per caption. Zero means DefaultTopK.
	TopK int

	// Concurrency is the number of files processed in parallel. Zero
	// means GOMAXPROCS.
	Concurrency int

	// FileTimeout bounds the processing of a single file. Zero means no
	// per-file deadline.
	FileTimeout time.Duration
}

// DefaultTopK is the tag count used when a caller does not specify one.
const DefaultTopK = 3

// FileFailure records a per-file error inside an otherwise successful
// batch.
type FileFailure struct {
	Path string
	Err  error
}

// BatchResult holds the outcome of a batch run. Records appear in input
// order; files that failed or were cancelled have no record and appear
// in Failures instead, so every input file shows up in exactly one of
// the two lists.
type BatchResult struct {
	Records  []*CaptionRecord
	Failures []FileFailure
}

// CaptionBatch captions files concurrently. Text embeddings are computed
// once before any file work; a failure there is fatal since no caption
// can be produced without tag vectors. Per-file decode and embedding
// failures are isolated into the result's Failures.
//
// Cancelling ctx stops new files from being issued; files already in
// flight finish or fail on their own contexts, and files never issued
// are recorded as failures carrying the context error.
func (e *Engine) CaptionBatch(ctx context.Context, files []string, opts BatchOptions) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoInput
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}

	if _, err := e.TagVectors(ctx); err != nil {
		return nil, err
	}

	records := make([]*CaptionRecord, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.Concurrency)

	issued := len(files)
issue:
	for i, path := range files {
		if ctx.Err() != nil {
			issued = i
			break
		}
		select {
		case <-ctx.Done():
			issued = i
			break issue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			fctx := ctx
			if opts.FileTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, opts.FileTimeout)
				defer cancel()
			}
			rec, err := e.CaptionFile(fctx, path, opts.TopK)
			if err != nil {
				errs[i] = err
				return
			}
			records[i] = rec
		}(i, path)
	}
	wg.Wait()

	res := &BatchResult{}
	for i, rec := range records {
		switch {
		case rec != nil:
			res.Records = append(res.Records, rec)
		case errs[i] != nil:
			res.Failures = append(res.Failures, FileFailure{Path: files[i], Err: errs[i]})
		case i >= issued:
			res.Failures = append(res.Failures, FileFailure{Path: files[i], Err: ctx.Err()})
		}
	}
	return res, nil
}
