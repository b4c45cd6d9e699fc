package models

import (
	"time"

	"gorm.io/gorm"
)

// Method represents a laboratory protocol in the catalog (e.g. SDS-PAGE,
// Western Blot). The catalog is read-only at runtime and seeded at startup.
type Method struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Category  string            `gorm:"size:100;index" json:"category"`
	Summary   string            `gorm:"type:text" json:"summary"`
	Steps     []MethodStep      `gorm:"foreignKey:MethodID" json:"steps,omitempty"`
	Params    []MethodParameter `gorm:"foreignKey:MethodID" json:"params,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Method) TableName() string { return "methods" }

// MethodStep is one ordered step of a protocol.
type MethodStep struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MethodID    uint   `gorm:"index;not null" json:"method_id"`
	Position    int    `gorm:"not null" json:"position"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Instruction string `gorm:"type:text" json:"instruction"`
	DurationMin int    `json:"duration_min"` // typical duration in minutes, 0 = untimed
}

func (MethodStep) TableName() string { return "method_steps" }

// MethodParameter is an adjustable numeric parameter of a protocol, with
// its default value and allowed range.
type MethodParameter struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	MethodID uint    `gorm:"index;not null" json:"method_id"`
	Name     string  `gorm:"size:100;not null" json:"name"`
	Unit     string  `gorm:"size:50" json:"unit"`
	Default  float64 `json:"default"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

func (MethodParameter) TableName() string { return "method_parameters" }
