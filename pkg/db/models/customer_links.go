package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RelationshipStatusActive marks a wholesaler-customer link that grants
	// ordering access.
	RelationshipStatusActive = "active"
	// RelationshipStatusInactive marks a revoked link.
	RelationshipStatusInactive = "inactive"
)

// WholesalerCustomer is the current mechanism linking a customer to a
// wholesaler. It coexists with the legacy users.wholesaler_id column and
// with customer group membership; all three paths grant access.
type WholesalerCustomer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WholesalerID uuid.UUID `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Status       string    `gorm:"column:status;not null;default:'active'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerGroup is a wholesaler-defined segment of its customers.
type CustomerGroup struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WholesalerID uuid.UUID `gorm:"column:wholesaler_id;type:uuid;not null;index"`
	Name         string    `gorm:"column:name;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CustomerGroupMember links a user into a customer group.
type CustomerGroupMember struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
