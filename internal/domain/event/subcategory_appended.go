package event

type SubcategoryAppended struct {
	RunID         string `json:"run_id"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	Name          string `json:"name"`
	Parts         int    `json:"parts"` // Parts in the new node
}

func (e *SubcategoryAppended) EventType() string {
	return "SubcategoryAppended"
}

func (e *SubcategoryAppended) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
