package model

import "time"

// Document is uploaded source material for LLM analysis.
type Document struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"index"`
	Name      string
	Text      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Indicator is a named numeric series tracked per project.
type Indicator struct {
	ID          uint `gorm:"primaryKey"`
	ProjectID   uint `gorm:"index"`
	Name        string
	Description string
	Unit        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Values      []IndicatorValue `gorm:"foreignKey:IndicatorID"`
}

// IndicatorValue is one measured point of an indicator.
type IndicatorValue struct {
	ID          uint   `gorm:"primaryKey"`
	IndicatorID uint   `gorm:"index"`
	Period      string // e.g. 2024-03
	Value       float64
	CreatedAt   time.Time
}

// Prompt is a stored analysis instruction fed to the LLM.
type Prompt struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Text      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Analysis records one LLM run over a document or an indicator.
type Analysis struct {
	ID          uint  `gorm:"primaryKey"`
	DocumentID  *uint `gorm:"index"`
	IndicatorID *uint `gorm:"index"`
	PromptID    uint  `gorm:"index"`
	Result      string `gorm:"type:text"`
	CreatedAt   time.Time
}
