package catalog

// EntryRequest for admin create/update of any catalog record
type EntryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Icon        string `json:"icon,omitempty" validate:"max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Category    string `json:"category,omitempty" validate:"max=50"`
}
