package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the delivery state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// Project is a construction project with a fixed budget.
//
// TotalExpenditure is derived from the approved expenditures of the project and
// is only ever written by the budget aggregator.
type Project struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"size:200;not null"`
	ManagerID        uint            `json:"manager_id" gorm:"index;not null"`
	Budget           decimal.Decimal `json:"budget" gorm:"type:decimal(15,2);not null"`
	TotalExpenditure decimal.Decimal `json:"total_expenditure" gorm:"type:decimal(15,2);not null;default:0"`
	Status           ProjectStatus   `json:"status" gorm:"size:20;not null;default:active;index"`
	StartDate        string          `json:"start_date" gorm:"size:10"`
	Description      string          `json:"description" gorm:"type:text"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName sets the table name
func (Project) TableName() string {
	return "projects"
}
