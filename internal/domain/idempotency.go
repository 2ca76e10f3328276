// Package domain defines the core persistence models for the application.
package domain

import "time"

// Idempotency records a previously processed command dispatch, keyed by
// (user_phone, group_id, key). The transport delivers events unordered and
// may redeliver; a matching record lets the execute endpoint acknowledge a
// retry without running the command's side effects twice.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserPhone string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_phone_group_key,priority:1"`
	GroupID   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_phone_group_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_phone_group_key,priority:3"`
	Command   string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
