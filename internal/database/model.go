package database

import "time"

// Base carries the auto-incrementing primary key shared by every table.
type Base struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
}

// Timestamps tracks row creation and the last modification.
// LastEdit is set on insert and refreshed on every update.
type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime"`
	LastEdit  time.Time `gorm:"column:last_edit;autoUpdateTime"`
}
