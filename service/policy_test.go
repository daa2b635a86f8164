package service

import (
	"testing"

	"infraspend/database"
	"infraspend/models"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestPolicyCan(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	manager := &models.User{ID: 2, Role: models.RoleManager, ProjectID: uintPtr(10)}
	idle := &models.User{ID: 3, Role: models.RoleManager}

	own := Target{ID: 5, ProjectID: 10}
	foreign := Target{ID: 6, ProjectID: 11}

	tests := []struct {
		name   string
		actor  *models.User
		action Action
		res    Resource
		target Target
		allow  bool
	}{
		{"admin creates project", admin, ActionCreate, ResourceProject, Target{}, true},
		{"admin deletes user", admin, ActionDelete, ResourceUser, Target{ID: 2}, true},
		{"admin renames category", admin, ActionUpdate, ResourceCategory, Target{ID: 1}, true},
		{"admin reads expenditure", admin, ActionRead, ResourceExpenditure, foreign, true},
		{"admin reviews expenditure", admin, ActionSetStatus, ResourceExpenditure, foreign, true},
		{"admin cannot edit expenditure", admin, ActionUpdate, ResourceExpenditure, foreign, false},
		{"admin cannot create expenditure", admin, ActionCreate, ResourceExpenditure, foreign, false},
		{"admin cannot delete expenditure", admin, ActionDelete, ResourceExpenditure, foreign, false},

		{"manager reads self", manager, ActionRead, ResourceUser, Target{ID: 2}, true},
		{"manager updates self", manager, ActionUpdate, ResourceUser, Target{ID: 2}, true},
		{"manager reads other user", manager, ActionRead, ResourceUser, Target{ID: 1}, false},
		{"manager creates user", manager, ActionCreate, ResourceUser, Target{}, false},
		{"manager reads own project", manager, ActionRead, ResourceProject, Target{ID: 10}, true},
		{"manager exports own project", manager, ActionExport, ResourceProject, Target{ID: 10}, true},
		{"manager reads other project", manager, ActionRead, ResourceProject, Target{ID: 11}, false},
		{"manager updates own project", manager, ActionUpdate, ResourceProject, Target{ID: 10}, false},
		{"manager lists categories", manager, ActionList, ResourceCategory, Target{}, true},
		{"manager creates category", manager, ActionCreate, ResourceCategory, Target{}, false},
		{"manager creates own expenditure", manager, ActionCreate, ResourceExpenditure, Target{ProjectID: 10}, true},
		{"manager creates foreign expenditure", manager, ActionCreate, ResourceExpenditure, Target{ProjectID: 11}, false},
		{"manager reads own expenditure", manager, ActionRead, ResourceExpenditure, own, true},
		{"manager updates own expenditure", manager, ActionUpdate, ResourceExpenditure, own, true},
		{"manager deletes foreign expenditure", manager, ActionDelete, ResourceExpenditure, foreign, false},
		{"manager reviews own expenditure", manager, ActionSetStatus, ResourceExpenditure, own, false},
		{"manager sees dashboard", manager, ActionRead, ResourceDashboard, Target{}, true},

		{"idle manager lists expenditures", idle, ActionList, ResourceExpenditure, Target{}, true},
		{"idle manager creates expenditure", idle, ActionCreate, ResourceExpenditure, Target{}, false},
		{"anonymous", nil, ActionList, ResourceCategory, Target{}, false},
	}

	var p Policy
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Can(tt.actor, tt.action, tt.res, tt.target)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrAuth)
			}
		})
	}
}

func TestPolicyNoProjectAssigned(t *testing.T) {
	idle := &models.User{ID: 3, Role: models.RoleManager}
	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		err := Policy{}.Can(idle, action, ResourceExpenditure, Target{ProjectID: 10})
		assert.EqualError(t, err, MsgNoProject, string(action))
	}
}

func TestPolicyScopes(t *testing.T) {
	var p Policy
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	manager := &models.User{ID: 2, Role: models.RoleManager, ProjectID: uintPtr(10)}
	idle := &models.User{ID: 3, Role: models.RoleManager}

	f, ok := p.ExpenditureScope(admin)
	assert.True(t, ok)
	assert.Empty(t, f)

	f, ok = p.ExpenditureScope(manager)
	assert.True(t, ok)
	assert.Equal(t, database.Filter{"project_id": uint(10)}, f)

	_, ok = p.ExpenditureScope(idle)
	assert.False(t, ok)

	f, ok = p.ProjectScope(manager)
	assert.True(t, ok)
	assert.Equal(t, database.Filter{"id": uint(10)}, f)

	_, ok = p.ProjectScope(idle)
	assert.False(t, ok)

	assert.Equal(t, database.Filter{"id": uint(2)}, p.UserScope(manager))
	assert.Empty(t, p.UserScope(admin))
}

func TestPolicyCheckUserUpdate(t *testing.T) {
	var p Policy
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	manager := &models.User{ID: 2, Role: models.RoleManager, ProjectID: uintPtr(10)}
	role := models.RoleAdmin
	name := "New Name"

	assert.NoError(t, p.CheckUserUpdate(admin, UpdateUserInput{Role: &role}))
	assert.NoError(t, p.CheckUserUpdate(manager, UpdateUserInput{Name: &name}))
	assert.ErrorIs(t, p.CheckUserUpdate(manager, UpdateUserInput{Role: &role}), ErrAuth)
	assert.ErrorIs(t, p.CheckUserUpdate(manager, UpdateUserInput{ProjectID: uintPtr(11)}), ErrAuth)
	assert.ErrorIs(t, p.CheckUserUpdate(manager, UpdateUserInput{Username: &name}), ErrAuth)
}
