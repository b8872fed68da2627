package request

// CreateClientRequest represents a saved client entry
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address" binding:"max=1000"`
	TaxID   string `json:"tax_id" binding:"max=50"`
	Phone   string `json:"phone" binding:"max=50"`
}
