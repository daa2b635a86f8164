package service

import (
	"context"
	"errors"
	"time"

	"infraspend/models"

	"github.com/shopspring/decimal"
)

// ReviewEvent describes an expenditure that was approved or rejected.
type ReviewEvent struct {
	ExpenditureID  uint                     `json:"expenditure_id"`
	ProjectID      uint                     `json:"project_id"`
	ProjectName    string                   `json:"project_name"`
	Category       string                   `json:"category"`
	Amount         decimal.Decimal          `json:"amount"`
	Status         models.ExpenditureStatus `json:"status"`
	ReviewedBy     uint                     `json:"reviewed_by"`
	ReviewerName   string                   `json:"reviewer_name"`
	ReviewedAt     time.Time                `json:"reviewed_at"`
	SubmitterName  string                   `json:"submitter_name"`
	SubmitterEmail string                   `json:"-"`
	ProjectTotal   decimal.Decimal          `json:"project_total"`
}

// Notifier is told about reviews after they are committed. Errors are logged
// and never undo the review.
type Notifier interface {
	ExpenditureReviewed(ctx context.Context, ev ReviewEvent) error
}

// Notifiers fans an event out to every notifier in the list.
type Notifiers []Notifier

func (ns Notifiers) ExpenditureReviewed(ctx context.Context, ev ReviewEvent) error {
	var errs []error
	for _, n := range ns {
		if err := n.ExpenditureReviewed(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) notifyReviewed(ctx context.Context, e *models.Expenditure, reviewer *models.User) {
	ev := ReviewEvent{
		ExpenditureID: e.ID,
		ProjectID:     e.ProjectID,
		Category:      e.Category,
		Amount:        e.Amount,
		Status:        e.Status,
		ReviewedBy:    reviewer.ID,
		ReviewerName:  displayName(reviewer),
	}
	if e.ReviewedAt != nil {
		ev.ReviewedAt = *e.ReviewedAt
	}
	if p, err := s.store.Projects.FindByID(ctx, e.ProjectID); err == nil {
		ev.ProjectName = p.Name
		ev.ProjectTotal = p.TotalExpenditure
	}
	if u, err := s.store.Users.FindByID(ctx, e.CreatedBy); err == nil {
		ev.SubmitterName = displayName(u)
		ev.SubmitterEmail = u.Email
	}

	if err := s.notifier.ExpenditureReviewed(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "review notification failed", "expenditure_id", e.ID, "error", err)
	}
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
