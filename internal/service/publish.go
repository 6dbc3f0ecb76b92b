package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"spareparts/catalog/internal/assembler"
	"spareparts/catalog/internal/domain"
	"spareparts/catalog/internal/domain/event"
	"spareparts/catalog/internal/metrics"
	"spareparts/catalog/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// publish fans the saved catalog out to every configured sink. Sinks run
// concurrently and do not cancel each other; all failures are joined.
// Metrics are pushed last so they include the failures.
func (s *Service) publish(
	ctx context.Context,
	logger *log.Entry,
	catalog *domain.Catalog,
	report *Report,
	counter *assembler.Counter,
	events []event.Event,
	buildMetrics *metrics.BuildMetrics,
) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	errGroup := new(errgroup.Group)

	run := func(sink string, fn func() error) {
		errGroup.Go(func() error {
			if err := fn(); err != nil {
				logger.WithField("sink", sink).Errorf("❌ Publish failed: %v", err)
				buildMetrics.PublishFailures.WithLabelValues(sink).Inc()

				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", sink, err))
				mu.Unlock()
				return nil
			}
			logger.WithField("sink", sink).Debug("Published")
			return nil
		})
	}

	if s.StateManager != nil {
		if last, ok := counter.Last(); ok {
			run("state", func() error {
				return s.StateManager.SetLastPartNumber(ctx, last)
			})
		}
	}

	if s.Parts != nil {
		run("postgres", func() error {
			if err := s.Parts.EnsureSchema(ctx); err != nil {
				return err
			}
			for _, result := range report.Batches {
				if err := s.Parts.SaveParts(ctx, result.CategoryID, result.SubcategoryID, result.Parts); err != nil {
					return err
				}
			}
			logger.Infof("🐘 Mirrored %d parts to Postgres", report.AddedParts)
			return nil
		})
	}

	if s.Events != nil {
		run("events", func() error {
			ids, err := s.Events.PublishAll(ctx, events)
			if err != nil {
				return err
			}
			logger.Infof("📨 Published %d events", len(ids))
			return nil
		})
	}

	if s.Storefront != nil && len(s.storefront.Paths) > 0 {
		run("storefront", func() error {
			return s.Storefront.Revalidate(ctx, s.storefront.Paths)
		})
	}

	if s.Artifacts != nil {
		run("storage", func() error {
			content, err := repository.Encode(catalog)
			if err != nil {
				return err
			}
			keys, err := s.Artifacts.Upload(ctx, report.RunID, report.LastUpdated, content)
			if err != nil {
				return err
			}
			logger.Infof("☁️ Uploaded catalog as %v", keys)
			return nil
		})
	}

	_ = errGroup.Wait()

	if s.metrics.Enabled {
		if err := buildMetrics.Push(ctx, s.metrics.PushGateway, s.metrics.Job); err != nil {
			logger.WithField("sink", "metrics").Errorf("❌ Publish failed: %v", err)
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}

	return errors.Join(errs...)
}
