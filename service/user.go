package service

import (
	"context"
	"errors"
	"strings"

	"infraspend/database"
	"infraspend/models"
)

// CreateUserInput is the payload of CreateUser.
type CreateUserInput struct {
	Username  string      `json:"username"`
	Password  string      `json:"password"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	ProjectID *uint       `json:"project_id"`
}

// UpdateUserInput holds the fields to change; nil fields are left alone.
// A ProjectID of 0 unassigns the user.
type UpdateUserInput struct {
	Username  *string      `json:"username"`
	Password  *string      `json:"password"`
	Name      *string      `json:"name"`
	Email     *string      `json:"email"`
	Role      *models.Role `json:"role"`
	ProjectID *uint        `json:"project_id"`
}

// ListUsers returns every user an admin can see, or just the manager themself.
func (s *Service) ListUsers(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := s.policy.Can(actor, ActionList, ResourceUser, Target{}); err != nil {
		return nil, err
	}
	return s.store.Users.FindAll(ctx, s.policy.UserScope(actor))
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if err := s.policy.Can(actor, ActionRead, ResourceUser, Target{ID: id}); err != nil {
		return nil, err
	}
	return s.findUser(ctx, s.store, id)
}

// CreateUser adds an account. Only managers carry a project assignment.
func (s *Service) CreateUser(ctx context.Context, actor *models.User, in CreateUserInput) (*models.User, error) {
	if err := s.policy.Can(actor, ActionCreate, ResourceUser, Target{}); err != nil {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = models.RoleManager
	}
	fe := fieldErrors{}
	fe.required("username", in.Username, 50)
	fe.password("password", in.Password)
	fe.email("email", in.Email)
	if !in.Role.Valid() {
		fe.add("role", "must be admin or manager")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username: in.Username,
		Password: hash,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Role:     in.Role,
	}
	if in.Role == models.RoleManager && in.ProjectID != nil && *in.ProjectID != 0 {
		u.ProjectID = in.ProjectID
	}

	err = s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := checkUsernameFree(ctx, tx, u.Username, 0); err != nil {
			return err
		}
		if u.ProjectID != nil {
			if err := checkProjectExists(ctx, tx, *u.ProjectID); err != nil {
				return err
			}
		}
		return tx.Users.Insert(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role, "by", actor.ID)
	return u, nil
}

// UpdateUser changes a user. Managers may only edit their own name, email and password.
func (s *Service) UpdateUser(ctx context.Context, actor *models.User, id uint, in UpdateUserInput) (*models.User, error) {
	if err := s.policy.Can(actor, ActionUpdate, ResourceUser, Target{ID: id}); err != nil {
		return nil, err
	}
	if err := s.policy.CheckUserUpdate(actor, in); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	fields := map[string]any{}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		fe.required("username", name, 50)
		fields["username"] = name
	}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		fe.email("email", email)
		fields["email"] = email
	}
	if in.Role != nil && !in.Role.Valid() {
		fe.add("role", "must be admin or manager")
	}
	if in.Password != nil {
		fe.password("password", *in.Password)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := s.verifier.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	var updated *models.User
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		u, err := s.findUser(ctx, tx, id)
		if err != nil {
			return err
		}

		if name, ok := fields["username"].(string); ok && name != u.Username {
			if err := checkUsernameFree(ctx, tx, name, id); err != nil {
				return err
			}
		}

		role := u.Role
		if in.Role != nil && *in.Role != u.Role {
			role = *in.Role
			if role == models.RoleAdmin {
				n, err := tx.CountManagedProjects(ctx, id)
				if err != nil {
					return err
				}
				if n > 0 {
					return fieldError("role", "user still manages a project")
				}
			}
			fields["role"] = role
		}

		switch {
		case role == models.RoleAdmin:
			fields["project_id"] = nil
		case in.ProjectID != nil && *in.ProjectID == 0:
			fields["project_id"] = nil
		case in.ProjectID != nil:
			if err := checkProjectExists(ctx, tx, *in.ProjectID); err != nil {
				return err
			}
			fields["project_id"] = *in.ProjectID
		}

		if len(fields) > 0 {
			if _, err := tx.Users.Update(ctx, id, fields); err != nil {
				return err
			}
		}
		updated, err = s.findUser(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes an account. Expenditures keep their created_by value.
func (s *Service) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	if err := s.policy.Can(actor, ActionDelete, ResourceUser, Target{ID: id}); err != nil {
		return err
	}
	if id == actor.ID {
		return conflict("you cannot delete your own account")
	}

	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if _, err := s.findUser(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.CountManagedProjects(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("user still manages a project")
		}
		ok, err := tx.Users.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.ID)
	return nil
}

func checkUsernameFree(ctx context.Context, tx *database.Store, username string, self uint) error {
	u, err := tx.UserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.ID == self {
		return nil
	}
	return fieldError("username", "is already taken")
}

func checkProjectExists(ctx context.Context, tx *database.Store, id uint) error {
	_, err := tx.Projects.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fieldError("project_id", "project does not exist")
	}
	return err
}
