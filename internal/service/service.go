package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"spareparts/catalog/internal/aggregator"
	"spareparts/catalog/internal/assembler"
	"spareparts/catalog/internal/batch"
	"spareparts/catalog/internal/client"
	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/domain"
	"spareparts/catalog/internal/domain/event"
	"spareparts/catalog/internal/metrics"
	"spareparts/catalog/internal/queue"
	"spareparts/catalog/internal/repository"
	"spareparts/catalog/internal/state"
	"spareparts/catalog/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// ErrPublish marks failures that happened after the catalog was saved.
var ErrPublish = errors.New("catalog saved but publishing failed")

// Dependencies are the collaborators of a Service. Everything except Store is
// optional; a nil publisher is skipped.
type Dependencies struct {
	Store        repository.CatalogStore
	PriceLists   batch.PriceListSource
	StateManager state.StateManager
	Parts        repository.PartRepository
	Events       queue.Publisher
	Storefront   client.StorefrontClient
	Artifacts    storage.ArtifactStore

	// Now is the clock used for lastUpdated; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	Dependencies

	catalog    config.CatalogConfig
	assembler  config.AssemblerConfig
	tiers      config.TiersConfig
	storefront config.StorefrontConfig
	metrics    config.MetricsConfig
}

func NewService(cfg *config.Config, deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		Dependencies: deps,
		catalog:      cfg.Catalog,
		assembler:    cfg.Assembler,
		tiers:        cfg.Tiers,
		storefront:   cfg.Storefront,
		metrics:      cfg.Metrics,
	}
}

// Build runs the batches against the catalog file in order and saves the result
// once. A failing batch aborts the run before anything is written. Publishing
// happens only after the save; its failures are returned wrapped in ErrPublish
// together with the report.
func (s *Service) Build(ctx context.Context, batches []*batch.Batch) (*Report, error) {
	runID := uuid.NewString()
	logger := log.WithField("run_id", runID)

	catalog, err := s.Store.Load()
	if err != nil {
		return nil, err
	}
	logger.Infof("📖 Loaded %s with %d parts in %d categories", s.Store.Path(), catalog.TotalParts, len(catalog.Categories))

	counter, err := s.newCounter(ctx, logger)
	if err != nil {
		return nil, err
	}
	asm := assembler.New(counter, s.policy(), s.random())
	buildMetrics := metrics.New()

	report := &Report{RunID: runID, Path: s.Store.Path()}
	var events []event.Event

	for _, b := range batches {
		started := time.Now()

		result, evt, err := s.applyBatch(ctx, catalog, asm, b, runID)
		if err != nil {
			return nil, fmt.Errorf("batch %s: %w", b.Name(), err)
		}

		report.Batches = append(report.Batches, *result)
		report.AddedParts += len(result.Parts)
		events = append(events, evt)

		buildMetrics.ObserveBatch(b.Name(), started)
		buildMetrics.PartsAdded.WithLabelValues(result.CategoryID, result.SubcategoryID).Add(float64(len(result.Parts)))
		if result.Created {
			buildMetrics.SubcategoriesAdded.Inc()
		}

		logger.WithField("batch", b.Name()).Infof("✅ %s %d parts to %s/%s",
			result.verb(), len(result.Parts), result.CategoryID, result.SubcategoryID)
	}

	catalog.LastUpdated = s.Now().Format(dateLayout)
	if s.catalog.Version != "" {
		catalog.Version = s.catalog.Version
	}
	catalog.Recount()

	if err := s.Store.Save(catalog); err != nil {
		return nil, err
	}

	report.Version = catalog.Version
	report.LastUpdated = catalog.LastUpdated
	report.TotalParts = catalog.TotalParts
	report.Subcategories = Stats(catalog)
	buildMetrics.CatalogParts.Set(float64(catalog.TotalParts))
	buildMetrics.LastSuccess.SetToCurrentTime()

	logger.Infof("💾 Saved %s: %d parts (+%d)", report.Path, report.TotalParts, report.AddedParts)
	LogReport(logger, report.Subcategories, report.TotalParts)

	events = append(events, &event.CatalogBuilt{
		RunID:       runID,
		Path:        report.Path,
		Version:     report.Version,
		LastUpdated: report.LastUpdated,
		TotalParts:  report.TotalParts,
		AddedParts:  report.AddedParts,
	})

	if err := s.publish(ctx, logger, catalog, report, counter, events, buildMetrics); err != nil {
		return report, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return report, nil
}

func (s *Service) applyBatch(
	ctx context.Context,
	catalog *domain.Catalog,
	asm *assembler.Assembler,
	b *batch.Batch,
	runID string,
) (*BatchResult, event.Event, error) {
	categoryID, categoryName := s.categoryOf(b)
	if _, err := aggregator.EnsureCategory(catalog, categoryID, categoryName); err != nil {
		return nil, nil, err
	}

	raws, err := b.RawParts(ctx, s.PriceLists)
	if err != nil {
		return nil, nil, err
	}

	parts, err := asm.WithTiers(b.Tiers.MinimumOrder, b.Tiers.LeadTime).AssembleAll(raws)
	if err != nil {
		return nil, nil, err
	}

	result := &BatchResult{Batch: b.Name(), CategoryID: categoryID, Parts: parts}

	if b.Subcategory != nil {
		result.SubcategoryID = b.Subcategory.ID
		result.Created = true

		_, err := aggregator.AppendSubcategories(catalog, categoryID, domain.Subcategory{
			ID:          b.Subcategory.ID,
			Name:        b.Subcategory.Name,
			Description: b.Subcategory.Description,
			Parts:       parts,
		})
		if err != nil {
			return nil, nil, err
		}
		return result, &event.SubcategoryAppended{
			RunID:         runID,
			CategoryID:    categoryID,
			SubcategoryID: b.Subcategory.ID,
			Name:          b.Subcategory.Name,
			Parts:         len(parts),
		}, nil
	}

	result.SubcategoryID = b.Target
	if _, err := aggregator.AppendParts(catalog, categoryID, b.Target, parts); err != nil {
		return nil, nil, err
	}

	partNumbers := make([]string, 0, len(parts))
	for _, p := range parts {
		partNumbers = append(partNumbers, p.PartNo)
	}
	return result, &event.PartsAppended{
		RunID:         runID,
		CategoryID:    categoryID,
		SubcategoryID: b.Target,
		PartNumbers:   partNumbers,
	}, nil
}

// categoryOf falls back to the configured category for batches that name none.
func (s *Service) categoryOf(b *batch.Batch) (string, string) {
	if b.Category.ID == "" {
		return s.catalog.CategoryID, s.catalog.CategoryName
	}
	name := b.Category.Name
	if name == "" && b.Category.ID == s.catalog.CategoryID {
		name = s.catalog.CategoryName
	}
	return b.Category.ID, name
}

// newCounter continues after the last stored part number when state is kept.
func (s *Service) newCounter(ctx context.Context, logger *log.Entry) (*assembler.Counter, error) {
	start := s.assembler.CounterStart
	if start == 0 {
		start = assembler.DefaultCounterStart
	}

	if s.StateManager != nil {
		last, ok, err := s.StateManager.GetLastPartNumber(ctx)
		if err != nil {
			return nil, err
		}
		if ok && last+1 > start {
			logger.Infof("🔄 Continuing part numbers from %d", last+1)
			start = last + 1
		}
	}
	return assembler.NewCounter(start), nil
}

func (s *Service) policy() assembler.Policy {
	policy := assembler.DefaultPolicy()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&policy.Currency, s.assembler.Currency)
	set(&policy.Stock, s.assembler.Stock)
	set(&policy.Location, s.assembler.Location)
	set(&policy.Warranty, s.assembler.Warranty)
	if s.assembler.BulkLowRatio > 0 && s.assembler.BulkHighRatio >= s.assembler.BulkLowRatio {
		policy.BulkLowRatio = s.assembler.BulkLowRatio
		policy.BulkHighRatio = s.assembler.BulkHighRatio
	}
	if !s.tiers.MinimumOrder.IsZero() {
		policy.MinimumOrder = s.tiers.MinimumOrder
	}
	if !s.tiers.LeadTime.IsZero() {
		policy.LeadTime = s.tiers.LeadTime
	}
	return policy
}

// random is seeded from config so runs can be reproduced; 0 means unseeded.
func (s *Service) random() *rand.Rand {
	if s.assembler.RandomSeed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(s.assembler.RandomSeed, s.assembler.RandomSeed))
}

// Recount loads the catalog, recomputes totalParts and saves it. It returns the
// stored and the recomputed totals.
func (s *Service) Recount(ctx context.Context) (int, int, error) {
	catalog, err := s.Store.Load()
	if err != nil {
		return 0, 0, err
	}

	before := catalog.TotalParts
	after := catalog.Recount()
	if err := s.Store.Save(catalog); err != nil {
		return 0, 0, err
	}

	if before != after {
		log.Warnf("⚠️ totalParts was %d, counted %d", before, after)
	}
	log.Infof("🔢 %s has %d parts", s.Store.Path(), after)
	return before, after, nil
}

// Stats loads the catalog and logs the part count of every subcategory.
func (s *Service) Stats(ctx context.Context) ([]SubcategoryCount, int, error) {
	catalog, err := s.Store.Load()
	if err != nil {
		return nil, 0, err
	}

	counts := Stats(catalog)
	total := catalog.CountParts()
	LogReport(log.NewEntry(log.StandardLogger()), counts, total)
	if total != catalog.TotalParts {
		log.Warnf("⚠️ Stored totalParts %d does not match %d counted", catalog.TotalParts, total)
	}
	return counts, total, nil
}
