package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"infraspend/database"
	"infraspend/models"

	"github.com/shopspring/decimal"
)

// ExpenditureFilter narrows ListExpenditures. Zero fields match everything.
type ExpenditureFilter struct {
	ProjectID uint
	Status    models.ExpenditureStatus
	Category  string
}

// CreateExpenditureInput is the payload of CreateExpenditure. ProjectID
// defaults to the actor's project. There is no status field: new
// expenditures are always pending.
type CreateExpenditureInput struct {
	ProjectID   uint            `json:"project_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// UpdateExpenditureInput holds the fields to change; nil fields are left alone.
type UpdateExpenditureInput struct {
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        *string          `json:"date"`
}

// Upload is an attachment file received from a client.
type Upload struct {
	Name string
	Type string
	Size int64
	Body io.Reader
}

// ListExpenditures returns the expenditures visible to actor that match f.
func (s *Service) ListExpenditures(ctx context.Context, actor *models.User, f ExpenditureFilter) ([]models.Expenditure, error) {
	if err := s.policy.Can(actor, ActionList, ResourceExpenditure, Target{}); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fieldError("status", "must be pending, approved or rejected")
	}

	filter, ok := s.policy.ExpenditureScope(actor)
	if !ok {
		return []models.Expenditure{}, nil
	}
	if f.ProjectID != 0 {
		if scoped, has := filter["project_id"]; has && scoped != f.ProjectID {
			return []models.Expenditure{}, nil
		}
		filter["project_id"] = f.ProjectID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return s.store.Expenditures.FindAll(ctx, filter)
}

// GetExpenditure returns one expenditure.
func (s *Service) GetExpenditure(ctx context.Context, actor *models.User, id uint) (*models.Expenditure, error) {
	e, err := s.findExpenditure(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Can(actor, ActionRead, ResourceExpenditure, Target{ID: id, ProjectID: e.ProjectID}); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateExpenditure submits a pending expenditure against the actor's project.
// The project total is not affected until the expenditure is approved.
func (s *Service) CreateExpenditure(ctx context.Context, actor *models.User, in CreateExpenditureInput) (*models.Expenditure, error) {
	projectID := in.ProjectID
	if projectID == 0 && actor.HasProject() {
		projectID = *actor.ProjectID
	}
	if err := s.policy.Can(actor, ActionCreate, ResourceExpenditure, Target{ProjectID: projectID}); err != nil {
		return nil, err
	}

	in.Category = strings.TrimSpace(in.Category)
	fe := fieldErrors{}
	fe.required("category", in.Category, 100)
	fe.money("amount", in.Amount)
	fe.date("date", in.Date)
	if err := fe.err(); err != nil {
		return nil, err
	}

	e := &models.Expenditure{
		ProjectID:   projectID,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		CreatedBy:   actor.ID,
		Status:      models.StatusPending,
		Attachments: []models.Attachment{},
	}
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := checkProjectExists(ctx, tx, projectID); err != nil {
			return err
		}
		if err := checkCategoryExists(ctx, tx, e.Category); err != nil {
			return err
		}
		return tx.Expenditures.Insert(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "expenditure submitted",
		"expenditure_id", e.ID, "project_id", e.ProjectID, "amount", e.Amount.String(), "by", actor.ID)
	return e, nil
}

// UpdateExpenditure edits a pending expenditure. Reviewed expenditures are frozen.
func (s *Service) UpdateExpenditure(ctx context.Context, actor *models.User, id uint, in UpdateExpenditureInput) (*models.Expenditure, error) {
	fe := fieldErrors{}
	fields := map[string]any{}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		fe.required("category", c, 100)
		fields["category"] = c
	}
	if in.Amount != nil {
		fe.money("amount", *in.Amount)
		fields["amount"] = *in.Amount
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		fe.date("date", *in.Date)
		fields["date"] = *in.Date
	}

	var updated *models.Expenditure
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		e, err := s.writableExpenditure(ctx, tx, actor, ActionUpdate, id)
		if err != nil {
			return err
		}
		if err := lockProject(ctx, tx, e.ProjectID); err != nil {
			return err
		}
		if err := fe.err(); err != nil {
			return err
		}
		if c, ok := fields["category"].(string); ok && c != e.Category {
			if err := checkCategoryExists(ctx, tx, c); err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			ok, err := tx.UpdateExpenditureIfPending(ctx, id, fields)
			if err != nil {
				return err
			}
			if !ok {
				return s.lostPending(ctx, tx, id)
			}
		}
		if _, err := s.budget.Recompute(ctx, tx, e.ProjectID); err != nil {
			return err
		}
		updated, err = s.findExpenditure(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteExpenditure removes a pending expenditure.
func (s *Service) DeleteExpenditure(ctx context.Context, actor *models.User, id uint) error {
	var removed *models.Expenditure
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		e, err := s.writableExpenditure(ctx, tx, actor, ActionDelete, id)
		if err != nil {
			return err
		}
		if err := lockProject(ctx, tx, e.ProjectID); err != nil {
			return err
		}
		ok, err := tx.DeleteExpenditureIfPending(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return s.lostPending(ctx, tx, id)
		}
		if _, err := s.budget.Recompute(ctx, tx, e.ProjectID); err != nil {
			return err
		}
		removed = e
		return nil
	})
	if err != nil {
		return err
	}

	if s.blobs != nil {
		for _, a := range removed.Attachments {
			if err := s.blobs.Delete(ctx, a.URL); err != nil {
				s.log.WarnContext(ctx, "attachment cleanup failed", "expenditure_id", id, "url", a.URL, "error", err)
			}
		}
	}
	s.log.InfoContext(ctx, "expenditure deleted", "expenditure_id", id, "by", actor.ID)
	return nil
}

// SetExpenditureStatus approves or rejects a pending expenditure. Of two
// concurrent reviews of the same expenditure exactly one succeeds.
func (s *Service) SetExpenditureStatus(ctx context.Context, actor *models.User, id uint, status models.ExpenditureStatus) (*models.Expenditure, error) {
	if err := s.policy.Can(actor, ActionSetStatus, ResourceExpenditure, Target{ID: id}); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fieldError("status", "must be approved or rejected")
	}

	at := s.now().UTC()
	var e *models.Expenditure
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		var err error
		e, err = s.findExpenditure(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.lifecycle.Transition(ctx, tx, e, status, actor, at)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "expenditure reviewed",
		"expenditure_id", e.ID, "project_id", e.ProjectID, "status", e.Status, "by", actor.ID)
	s.notifyReviewed(ctx, e, actor)
	return e, nil
}

// AddAttachment stores a file and appends it to a pending expenditure.
func (s *Service) AddAttachment(ctx context.Context, actor *models.User, id uint, up Upload) (*models.Expenditure, error) {
	if s.blobs == nil {
		return nil, errors.New("attachment storage is not configured")
	}
	e, err := s.findExpenditure(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Can(actor, ActionUpdate, ResourceExpenditure, Target{ID: id, ProjectID: e.ProjectID}); err != nil {
		return nil, err
	}
	if e.Status != models.StatusPending {
		return nil, conflict("expenditure has already been reviewed")
	}
	if strings.TrimSpace(up.Name) == "" {
		return nil, fieldError("file", "is required")
	}

	url, err := s.blobs.Put(ctx, up.Name, up.Type, up.Body)
	if err != nil {
		return nil, err
	}
	att := models.Attachment{Name: up.Name, Size: up.Size, Type: up.Type, URL: url}

	var updated *models.Expenditure
	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		cur, err := s.findExpenditure(ctx, tx, id)
		if err != nil {
			return err
		}
		list := append(cur.Attachments, att)
		ok, err := tx.UpdateExpenditureIfPending(ctx, id, map[string]any{"attachments": list})
		if err != nil {
			return err
		}
		if !ok {
			return s.lostPending(ctx, tx, id)
		}
		cur.Attachments = list
		updated = cur
		return nil
	})
	if err != nil {
		if derr := s.blobs.Delete(ctx, url); derr != nil {
			s.log.WarnContext(ctx, "orphaned attachment", "url", url, "error", derr)
		}
		return nil, err
	}
	return updated, nil
}

// writableExpenditure loads an expenditure for update or delete and checks
// that actor may change it and that it is still pending.
func (s *Service) writableExpenditure(ctx context.Context, tx *database.Store, actor *models.User, action Action, id uint) (*models.Expenditure, error) {
	if actor.IsAdmin() || !actor.HasProject() {
		if err := s.policy.Can(actor, action, ResourceExpenditure, Target{ID: id}); err != nil {
			return nil, err
		}
	}
	e, err := s.findExpenditure(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Can(actor, action, ResourceExpenditure, Target{ID: id, ProjectID: e.ProjectID}); err != nil {
		return nil, err
	}
	if e.Status != models.StatusPending {
		return nil, conflict(fmt.Sprintf("expenditure has already been %s", e.Status))
	}
	return e, nil
}

// lostPending explains why a pending-only write changed nothing.
func (s *Service) lostPending(ctx context.Context, tx *database.Store, id uint) error {
	cur, err := tx.Expenditures.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return notFound("expenditure")
	}
	if err != nil {
		return err
	}
	return conflict(fmt.Sprintf("expenditure has already been %s", cur.Status))
}

func checkCategoryExists(ctx context.Context, tx *database.Store, name string) error {
	_, err := tx.CategoryByName(ctx, name, 0)
	if errors.Is(err, database.ErrNotFound) {
		return fieldError("category", "category does not exist")
	}
	return err
}

// lockProject takes the project row lock before an expenditure of the project
// is changed. The write that follows is conditioned on the expenditure being
// pending, so the stale read in writableExpenditure is harmless.
func lockProject(ctx context.Context, tx *database.Store, projectID uint) error {
	if _, err := tx.LockProject(ctx, projectID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("lock project: %w", err)
	}
	return nil
}
