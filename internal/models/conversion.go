package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversion is the persisted summary of one MIDI-to-table conversion.
// The voice tables themselves are not stored; they are cheap to recompute
// and the history exists for usage insight, not replay.
type Conversion struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Filename  string  `gorm:"not null" json:"filename"`
	MaxVoices int     `gorm:"not null" json:"max_voices"`
	NoteCount int     `gorm:"not null" json:"note_count"`
	TableLen  int     `gorm:"not null" json:"table_len"`
	PPQ       int     `gorm:"not null" json:"ppq"`
	BPM       float64 `gorm:"not null" json:"bpm"`
	MetroMs   float64 `gorm:"not null" json:"metro_ms"`
}
