package service

import (
	"errors"
	"testing"

	"infraspend/models"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleCheck(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	manager := &models.User{ID: 2, Role: models.RoleManager}

	tests := []struct {
		name    string
		actor   *models.User
		from    models.ExpenditureStatus
		to      models.ExpenditureStatus
		wantErr error
	}{
		{"approve", admin, models.StatusPending, models.StatusApproved, nil},
		{"reject", admin, models.StatusPending, models.StatusRejected, nil},
		{"self loop", admin, models.StatusPending, models.StatusPending, ErrInvalidTransition},
		{"approved to rejected", admin, models.StatusApproved, models.StatusRejected, ErrInvalidTransition},
		{"rejected to approved", admin, models.StatusRejected, models.StatusApproved, ErrInvalidTransition},
		{"back to pending", admin, models.StatusApproved, models.StatusPending, ErrInvalidTransition},
		{"manager", manager, models.StatusPending, models.StatusApproved, ErrAuth},
		{"anonymous", nil, models.StatusPending, models.StatusApproved, ErrAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Lifecycle{}.Check(tt.actor, tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
