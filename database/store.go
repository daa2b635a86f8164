package database

import (
	"context"
	"errors"
	"time"

	"infraspend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns all persisted state.
type Store struct {
	db *gorm.DB

	Users        Repository[models.User]
	Projects     Repository[models.Project]
	Expenditures Repository[models.Expenditure]
	Categories   Repository[models.Category]
}

// NewStore wraps db. Categories are listed by name, everything else in insertion order.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewRepository[models.User](db, "id ASC"),
		Projects:     NewRepository[models.Project](db, "id ASC"),
		Expenditures: NewRepository[models.Expenditure](db, "id ASC"),
		Categories:   NewRepository[models.Category](db, "name ASC"),
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func first[T any](q *gorm.DB) (*T, error) {
	var rec T
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// UserByUsername looks a user up by login name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](s.db.WithContext(ctx).Where("username = ?", username))
}

// CategoryByName looks a category up by exact name, ignoring excludeID when non-zero.
func (s *Store) CategoryByName(ctx context.Context, name string, excludeID uint) (*models.Category, error) {
	q := s.db.WithContext(ctx).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return first[models.Category](q)
}

// LockProject reads the project row with an exclusive lock held until the
// transaction ends. SQLite ignores the clause and serializes writers instead.
func (s *Store) LockProject(ctx context.Context, id uint) (*models.Project, error) {
	return first[models.Project](s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// ApprovedAmounts returns the amounts of all approved expenditures of a project.
// It is a locking read so it sees rows committed after the transaction's
// snapshot was taken.
func (s *Store) ApprovedAmounts(ctx context.Context, projectID uint) ([]decimal.Decimal, error) {
	var rows []struct {
		Amount decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&models.Expenditure{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Select("amount").
		Where("project_id = ? AND status = ?", projectID, models.StatusApproved).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	amounts := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		amounts = append(amounts, r.Amount)
	}
	return amounts, nil
}

// SetProjectTotal stores a recomputed total_expenditure.
func (s *Store) SetProjectTotal(ctx context.Context, projectID uint, total decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("total_expenditure", total).Error
}

// CompareAndSetStatus moves an expenditure from one status to another only if
// it is still in from. It reports whether the row changed.
func (s *Store) CompareAndSetStatus(ctx context.Context, id uint, from, to models.ExpenditureStatus, reviewer uint, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Expenditure{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateExpenditureIfPending applies fields only while the expenditure is pending.
func (s *Store) UpdateExpenditureIfPending(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Expenditure{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteExpenditureIfPending deletes the expenditure only while it is pending.
func (s *Store) DeleteExpenditureIfPending(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Delete(&models.Expenditure{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountExpenditures counts the expenditures of a project, whatever their status.
func (s *Store) CountExpenditures(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Expenditure{}).Where("project_id = ?", projectID).Count(&n).Error
	return n, err
}

// CountManagedProjects counts projects whose manager is userID.
func (s *Store) CountManagedProjects(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Project{}).Where("manager_id = ?", userID).Count(&n).Error
	return n, err
}

// ClearProjectAssignments unassigns every user assigned to projectID.
func (s *Store) ClearProjectAssignments(ctx context.Context, projectID uint) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error
}
