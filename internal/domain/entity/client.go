package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a saved bill-to party owned by one user
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex:idx_clients_username_name" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_clients_username_name" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	TaxID     string    `gorm:"size:50;column:tax_id" json:"tax_id"`
	Phone     string    `gorm:"size:50" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new client
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
