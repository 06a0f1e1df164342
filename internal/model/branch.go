package model

import "time"

// Branch represents a company warehouse location. Branches are never hard
// deleted; deactivating one removes it from the selectable set for transfers.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
