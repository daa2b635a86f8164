package service

import (
	"infraspend/database"
	"infraspend/models"
)

// Action is an operation checked by the Policy.
type Action string

const (
	ActionList      Action = "list"
	ActionRead      Action = "read"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionSetStatus Action = "set_status"
	ActionExport    Action = "export"
)

// Resource is the kind of entity an Action applies to.
type Resource string

const (
	ResourceUser        Resource = "user"
	ResourceProject     Resource = "project"
	ResourceExpenditure Resource = "expenditure"
	ResourceCategory    Resource = "category"
	ResourceDashboard   Resource = "dashboard"
)

// Target identifies the entity being acted on. ID is the entity id and
// ProjectID the owning project of an expenditure.
type Target struct {
	ID        uint
	ProjectID uint
}

// MsgNoProject is the denial returned to managers without an assigned project.
const MsgNoProject = "no project assigned"

// Policy decides who may do what. It never touches the store.
type Policy struct{}

// Can returns nil when actor may perform action, otherwise an Error matching ErrAuth.
func (Policy) Can(actor *models.User, action Action, res Resource, target Target) error {
	if actor == nil {
		return &Error{Kind: KindAuth, Message: "authentication required"}
	}

	if actor.IsAdmin() {
		if res != ResourceExpenditure {
			return nil
		}
		switch action {
		case ActionList, ActionRead, ActionSetStatus:
			return nil
		}
		return forbidden("admins can only review expenditures")
	}
	if actor.Role != models.RoleManager {
		return forbidden("unknown role")
	}

	switch res {
	case ResourceDashboard:
		return nil

	case ResourceCategory:
		if action == ActionList || action == ActionRead {
			return nil
		}
		return forbidden("only admins can manage categories")

	case ResourceUser:
		switch action {
		case ActionList:
			return nil
		case ActionRead, ActionUpdate:
			if target.ID == actor.ID {
				return nil
			}
			return forbidden("managers can only access their own profile")
		}
		return forbidden("only admins can manage users")

	case ResourceProject:
		switch action {
		case ActionList:
			return nil
		case ActionRead, ActionExport:
			if !actor.HasProject() {
				return forbidden(MsgNoProject)
			}
			if target.ID == *actor.ProjectID {
				return nil
			}
			return forbidden("managers can only access their assigned project")
		}
		return forbidden("only admins can manage projects")

	case ResourceExpenditure:
		switch action {
		case ActionSetStatus:
			return forbidden("only admins can change expenditure status")
		case ActionList:
			return nil
		}
		if !actor.HasProject() {
			return forbidden(MsgNoProject)
		}
		if target.ProjectID == *actor.ProjectID {
			return nil
		}
		return forbidden("expenditure belongs to another project")
	}

	return forbidden("permission denied")
}

// CheckUserUpdate rejects profile fields a manager may not change on their own record.
func (Policy) CheckUserUpdate(actor *models.User, in UpdateUserInput) error {
	if actor.IsAdmin() {
		return nil
	}
	if in.Username != nil || in.Role != nil || in.ProjectID != nil {
		return forbidden("managers can only change their name, email and password")
	}
	return nil
}

// ExpenditureScope returns the filter limiting which expenditures actor can list.
// ok is false when actor can see none.
func (Policy) ExpenditureScope(actor *models.User) (filter database.Filter, ok bool) {
	if actor.IsAdmin() {
		return database.Filter{}, true
	}
	if !actor.HasProject() {
		return nil, false
	}
	return database.Filter{"project_id": *actor.ProjectID}, true
}

// ProjectScope returns the filter limiting which projects actor can list.
func (Policy) ProjectScope(actor *models.User) (filter database.Filter, ok bool) {
	if actor.IsAdmin() {
		return database.Filter{}, true
	}
	if !actor.HasProject() {
		return nil, false
	}
	return database.Filter{"id": *actor.ProjectID}, true
}

// UserScope returns the filter limiting which users actor can list.
func (Policy) UserScope(actor *models.User) database.Filter {
	if actor.IsAdmin() {
		return database.Filter{}
	}
	return database.Filter{"id": actor.ID}
}
