package models

import (
	"time"
)

// Category is an admin-maintained expenditure category.
//
// Expenditures store the category name as free text, so renaming or deleting a
// category leaves existing expenditures untouched.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories are seeded when the categories table is empty.
func DefaultCategories() []string {
	return []string{
		"Materials",
		"Labor",
		"Equipment",
		"Subcontractor",
		"Permits",
		"Safety",
		"Consulting",
		"Environmental",
		"Utilities",
		"Landscaping",
		"Transportation",
		"Insurance",
		"Other",
	}
}
