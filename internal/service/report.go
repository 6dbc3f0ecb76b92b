package service

import (
	"spareparts/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Report summarizes one build
type Report struct {
	RunID         string
	Path          string
	Version       string
	LastUpdated   string
	TotalParts    int
	AddedParts    int
	Batches       []BatchResult
	Subcategories []SubcategoryCount
}

// BatchResult is what one batch contributed
type BatchResult struct {
	Batch         string
	CategoryID    string
	SubcategoryID string
	Created       bool // A new subcategory node rather than an append
	Parts         []domain.Part
}

func (r BatchResult) verb() string {
	if r.Created {
		return "Created subcategory with"
	}
	return "Appended"
}

type SubcategoryCount struct {
	CategoryID    string
	SubcategoryID string
	Name          string
	Parts         int
}

// Stats lists every subcategory in catalog order.
func Stats(catalog *domain.Catalog) []SubcategoryCount {
	var counts []SubcategoryCount
	for _, cat := range catalog.Categories {
		for _, sc := range cat.Subcategories {
			counts = append(counts, SubcategoryCount{
				CategoryID:    cat.ID,
				SubcategoryID: sc.ID,
				Name:          sc.Name,
				Parts:         len(sc.Parts),
			})
		}
	}
	return counts
}

func LogReport(logger *log.Entry, counts []SubcategoryCount, total int) {
	for _, c := range counts {
		logger.Infof("   %-40s %5d parts", c.Name, c.Parts)
	}
	logger.Infof("📊 TOTAL: %d parts in %d subcategories", total, len(counts))
}
