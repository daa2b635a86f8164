package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infraspend/database"
	"infraspend/models"
)

// Lifecycle owns the expenditure state machine:
//
//	pending -> approved
//	pending -> rejected
//
// approved and rejected are terminal.
type Lifecycle struct {
	Budget BudgetAggregator
}

// Check validates a status change without touching the store.
func (Lifecycle) Check(actor *models.User, current, next models.ExpenditureStatus) error {
	if !actor.IsAdmin() {
		return forbidden("only admins can change expenditure status")
	}
	if current != models.StatusPending {
		return invalidTransition("expenditure is already %s", current)
	}
	if next != models.StatusApproved && next != models.StatusRejected {
		return invalidTransition("cannot move expenditure from %s to %s", current, next)
	}
	return nil
}

// Transition moves exp to next inside tx. The update is conditioned on exp
// still being pending, so of two concurrent reviews only one succeeds. The
// project total is recomputed in the same transaction.
func (l Lifecycle) Transition(ctx context.Context, tx *database.Store, exp *models.Expenditure, next models.ExpenditureStatus, actor *models.User, at time.Time) error {
	if err := l.Check(actor, exp.Status, next); err != nil {
		return err
	}

	if err := lockProject(ctx, tx, exp.ProjectID); err != nil {
		return err
	}

	ok, err := tx.CompareAndSetStatus(ctx, exp.ID, models.StatusPending, next, actor.ID, at)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !ok {
		current, err := tx.Expenditures.FindByID(ctx, exp.ID)
		if errors.Is(err, database.ErrNotFound) {
			return notFound("expenditure")
		}
		if err != nil {
			return err
		}
		return invalidTransition("expenditure is already %s", current.Status)
	}

	exp.Status = next
	exp.ReviewedBy = &actor.ID
	exp.ReviewedAt = &at

	if _, err := l.Budget.Recompute(ctx, tx, exp.ProjectID); err != nil {
		return err
	}
	return nil
}
