package event

type CatalogBuilt struct {
	RunID       string `json:"run_id"`
	Path        string `json:"path"`         // Catalog file that was written
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated"`
	TotalParts  int    `json:"total_parts"`
	AddedParts  int    `json:"added_parts"` // Parts appended by this run
}

func (e *CatalogBuilt) EventType() string {
	return "CatalogBuilt"
}

func (e *CatalogBuilt) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
