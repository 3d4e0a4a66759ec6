package store

import (
	"time"

	"gorm.io/datatypes"
)

// DialogueModel is the GORM model for a dialogue record. Number is the
// primary key, which gives the per-key uniqueness that the upserts rely on.
type DialogueModel struct {
	Number         int            `gorm:"primaryKey;autoIncrement:false"`
	Title          string         `gorm:"not null"`
	AudioDriveID   string
	TranscriptText string         `gorm:"type:text;not null;default:''"`
	Highlights     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}
