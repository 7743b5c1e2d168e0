package models

import (
	"time"
)

// CollectionEntry is one ledger row: a stack of copies of a printing in one
// finish, owned by one user.
type CollectionEntry struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	CardID        string    `json:"card_id" gorm:"not null;index"`
	Card          Card      `json:"card" gorm:"foreignKey:CardID"`
	Quantity      int       `json:"quantity" gorm:"default:1"`
	Finish        Finish    `json:"finish" gorm:"default:'NONFOIL'"`
	AcquiredPrice *float64  `json:"acquired_price"` // per copy; nil when the cost was never recorded
	Notes         string    `json:"notes"`
	AddedAt       time.Time `json:"added_at"`
}

type AddToCollectionRequest struct {
	CardID        string   `json:"card_id" binding:"required"`
	Quantity      int      `json:"quantity"`
	Finish        Finish   `json:"finish"`
	AcquiredPrice *float64 `json:"acquired_price"`
	Notes         string   `json:"notes"`
}

type UpdateCollectionRequest struct {
	Quantity      *int     `json:"quantity"`
	Finish        *Finish  `json:"finish"`
	AcquiredPrice *float64 `json:"acquired_price"`
	Notes         *string  `json:"notes"`
}

// CollectionUpdateResponse includes the updated entry plus operation info
type CollectionUpdateResponse struct {
	Entry     CollectionEntry `json:"entry"`
	Operation string          `json:"operation"` // "updated", "merged"
	Message   string          `json:"message,omitempty"`
}
