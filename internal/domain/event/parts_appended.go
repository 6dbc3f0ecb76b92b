package event

type PartsAppended struct {
	RunID         string   `json:"run_id"`
	CategoryID    string   `json:"category_id"`
	SubcategoryID string   `json:"subcategory_id"`
	PartNumbers   []string `json:"part_numbers"`
}

func (e *PartsAppended) EventType() string {
	return "PartsAppended"
}

func (e *PartsAppended) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
