package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ExpenditureStatus is the review state of an expenditure
type ExpenditureStatus string

const (
	StatusPending  ExpenditureStatus = "pending"
	StatusApproved ExpenditureStatus = "approved"
	StatusRejected ExpenditureStatus = "rejected"
)

// Valid reports whether s is a known expenditure status.
func (s ExpenditureStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further review is possible from s.
func (s ExpenditureStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Attachment describes a stored file; the bytes live in the blob store.
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Expenditure is a spend submitted by a project manager.
type Expenditure struct {
	ID          uint                           `json:"id" gorm:"primaryKey"`
	ProjectID   uint                           `json:"project_id" gorm:"index;not null"`
	Category    string                         `json:"category" gorm:"size:100;not null"`
	Amount      decimal.Decimal                `json:"amount" gorm:"type:decimal(15,2);not null"`
	Description string                         `json:"description" gorm:"type:text"`
	Date        string                         `json:"date" gorm:"size:10;index"`
	CreatedBy   uint                           `json:"created_by" gorm:"index;not null"`
	Status      ExpenditureStatus              `json:"status" gorm:"size:20;not null;default:pending;index"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
	ReviewedBy  *uint                          `json:"reviewed_by"`
	ReviewedAt  *time.Time                     `json:"reviewed_at"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// TableName sets the table name
func (Expenditure) TableName() string {
	return "expenditures"
}
