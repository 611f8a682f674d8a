package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/clients"
	"github.com/pwnholic/observador/internal/exports"
	"github.com/pwnholic/observador/internal/layout"
	"github.com/pwnholic/observador/internal/report"
)

type generateRecords struct {
	loader        *clients.AssetLoader
	coordinator   *report.Coordinator
	outputDir     string
	maxConcurrent int
}

func NewGenerateRecords(conf *Config) (*generateRecords, error) {
	cfg := layout.Default()
	renderer, err := exports.New(conf.Backend, cfg)
	if err != nil {
		return nil, err
	}

	httpOpts := conf.HTTP
	loader := clients.NewAssetLoader(&clients.AssetOptions{
		HTTP:      &httpOpts,
		MaxPixels: conf.MaxPixels,
		Cache:     conf.Cache,
	})

	opts := report.DefaultOptions()
	opts.Config = cfg
	opts.Letterhead = conf.Letterhead
	opts.LeftLogo = conf.LeftLogo
	opts.RightLogo = conf.RightLogo

	return &generateRecords{
		loader:        loader,
		coordinator:   report.NewCoordinator(loader, renderer, opts),
		outputDir:     conf.OutputDir,
		maxConcurrent: conf.Concurrency,
	}, nil
}

func (gr *generateRecords) Close() {
	gr.loader.Close()
}

// processRecords exports every record. One failing record does not stop the
// others; all failures are reported together.
func (gr *generateRecords) processRecords(ctx context.Context, records []Record) ([]string, error) {
	startTime := time.Now()
	internal.Info("Exporting %d records as %s with %d max workers",
		len(records), gr.coordinator.Renderer().Name(), gr.maxConcurrent)

	var (
		mu    sync.Mutex
		saved []string
		errs  []error
	)

	var g errgroup.Group
	g.SetLimit(gr.maxConcurrent)
	for i, rec := range records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			path, err := gr.processRecord(ctx, rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("record %d (%s): %w", i+1, rec.Student.Name.Or("Estudiante"), err))
				return nil
			}
			saved = append(saved, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return saved, err
	}

	internal.Info("[SUMMARY] Exported %d of %d records in %v", len(saved), len(records), time.Since(startTime))
	if len(errs) > 0 {
		return saved, fmt.Errorf("completed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return saved, nil
}

func (gr *generateRecords) processRecord(ctx context.Context, rec Record) (string, error) {
	artifact, err := gr.coordinator.Generate(ctx, rec.Student, rec.Observations, rec.Filename)
	if err != nil {
		return "", err
	}
	path, err := exports.Save(artifact, gr.outputDir)
	if err != nil {
		return "", err
	}
	internal.Success("Saved to %s", path)
	return path, nil
}
