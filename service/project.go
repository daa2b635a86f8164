package service

import (
	"context"
	"errors"
	"strings"

	"infraspend/database"
	"infraspend/models"

	"github.com/shopspring/decimal"
)

// ProjectDetail is a project with its derived budget figures.
type ProjectDetail struct {
	models.Project
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization int64           `json:"utilization"`
}

func newProjectDetail(p models.Project) ProjectDetail {
	sum := Summarize(p.Budget, p.TotalExpenditure)
	return ProjectDetail{Project: p, Remaining: sum.Remaining, Utilization: sum.Utilization}
}

// CreateProjectInput is the payload of CreateProject. There is no way to set
// the total expenditure; it always starts at zero.
type CreateProjectInput struct {
	Name        string               `json:"name"`
	ManagerID   uint                 `json:"manager_id"`
	Budget      decimal.Decimal      `json:"budget"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   string               `json:"start_date"`
	Description string               `json:"description"`
}

// UpdateProjectInput holds the fields to change; nil fields are left alone.
type UpdateProjectInput struct {
	Name        *string               `json:"name"`
	ManagerID   *uint                 `json:"manager_id"`
	Budget      *decimal.Decimal      `json:"budget"`
	Status      *models.ProjectStatus `json:"status"`
	StartDate   *string               `json:"start_date"`
	Description *string               `json:"description"`
}

// ListProjects returns all projects for admins and the assigned project for managers.
func (s *Service) ListProjects(ctx context.Context, actor *models.User) ([]ProjectDetail, error) {
	if err := s.policy.Can(actor, ActionList, ResourceProject, Target{}); err != nil {
		return nil, err
	}
	filter, ok := s.policy.ProjectScope(actor)
	if !ok {
		return []ProjectDetail{}, nil
	}
	projects, err := s.store.Projects.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectDetail, 0, len(projects))
	for _, p := range projects {
		out = append(out, newProjectDetail(p))
	}
	return out, nil
}

// GetProject returns one project with remaining and utilization.
func (s *Service) GetProject(ctx context.Context, actor *models.User, id uint) (*ProjectDetail, error) {
	if err := s.policy.Can(actor, ActionRead, ResourceProject, Target{ID: id}); err != nil {
		return nil, err
	}
	p, err := s.findProject(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	d := newProjectDetail(*p)
	return &d, nil
}

// CreateProject adds a project. A manager without a project is assigned to it.
func (s *Service) CreateProject(ctx context.Context, actor *models.User, in CreateProjectInput) (*ProjectDetail, error) {
	if err := s.policy.Can(actor, ActionCreate, ResourceProject, Target{}); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = models.ProjectActive
	}
	fe := fieldErrors{}
	fe.required("name", in.Name, 200)
	fe.money("budget", in.Budget)
	fe.date("start_date", in.StartDate)
	if !in.Status.Valid() {
		fe.add("status", "must be active, on-hold or completed")
	}
	if in.ManagerID == 0 {
		fe.add("manager_id", "is required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	p := &models.Project{
		Name:             in.Name,
		ManagerID:        in.ManagerID,
		Budget:           in.Budget,
		TotalExpenditure: decimal.Zero,
		Status:           in.Status,
		StartDate:        in.StartDate,
		Description:      strings.TrimSpace(in.Description),
	}
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		manager, err := checkManager(ctx, tx, in.ManagerID)
		if err != nil {
			return err
		}
		if err := tx.Projects.Insert(ctx, p); err != nil {
			return err
		}
		if !manager.HasProject() {
			_, err = tx.Users.Update(ctx, manager.ID, map[string]any{"project_id": p.ID})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "project created", "project_id", p.ID, "budget", p.Budget.String(), "by", actor.ID)
	d := newProjectDetail(*p)
	return &d, nil
}

// UpdateProject changes a project. total_expenditure is never client-writable.
func (s *Service) UpdateProject(ctx context.Context, actor *models.User, id uint, in UpdateProjectInput) (*ProjectDetail, error) {
	if err := s.policy.Can(actor, ActionUpdate, ResourceProject, Target{ID: id}); err != nil {
		return nil, err
	}

	fe := fieldErrors{}
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		fe.required("name", name, 200)
		fields["name"] = name
	}
	if in.Budget != nil {
		fe.money("budget", *in.Budget)
		fields["budget"] = *in.Budget
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			fe.add("status", "must be active, on-hold or completed")
		}
		fields["status"] = *in.Status
	}
	if in.StartDate != nil {
		fe.date("start_date", *in.StartDate)
		fields["start_date"] = *in.StartDate
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.ManagerID != nil {
		fields["manager_id"] = *in.ManagerID
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	var updated *models.Project
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if _, err := s.findProject(ctx, tx, id); err != nil {
			return err
		}
		if in.ManagerID != nil {
			if _, err := checkManager(ctx, tx, *in.ManagerID); err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			if _, err := tx.Projects.Update(ctx, id, fields); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.findProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	d := newProjectDetail(*updated)
	return &d, nil
}

// DeleteProject removes a project without expenditures and unassigns its users.
func (s *Service) DeleteProject(ctx context.Context, actor *models.User, id uint) error {
	if err := s.policy.Can(actor, ActionDelete, ResourceProject, Target{ID: id}); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if _, err := tx.LockProject(ctx, id); err != nil {
			return storeErr(err, "project")
		}
		n, err := tx.CountExpenditures(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("project still has expenditures")
		}
		if err := tx.ClearProjectAssignments(ctx, id); err != nil {
			return err
		}
		ok, err := tx.Projects.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("project")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "project deleted", "project_id", id, "by", actor.ID)
	return nil
}

// ProjectExpenditures lists the expenditures of one project.
func (s *Service) ProjectExpenditures(ctx context.Context, actor *models.User, id uint) ([]models.Expenditure, error) {
	if err := s.policy.Can(actor, ActionRead, ResourceProject, Target{ID: id}); err != nil {
		return nil, err
	}
	if _, err := s.findProject(ctx, s.store, id); err != nil {
		return nil, err
	}
	return s.store.Expenditures.FindAll(ctx, database.Filter{"project_id": id})
}

// ReconcileBudgets recomputes the total of every project. It repairs totals
// written before they were derived, and is run at startup.
func (s *Service) ReconcileBudgets(ctx context.Context) error {
	projects, err := s.store.Projects.FindAll(ctx, nil)
	if err != nil {
		return err
	}
	fixed := 0
	for _, p := range projects {
		var total decimal.Decimal
		err := s.store.Transaction(ctx, func(tx *database.Store) error {
			if _, err := tx.LockProject(ctx, p.ID); err != nil {
				return err
			}
			sum, err := s.budget.Recompute(ctx, tx, p.ID)
			total = sum
			return err
		})
		if err != nil {
			return err
		}
		if !total.Equal(p.TotalExpenditure) {
			fixed++
			s.log.WarnContext(ctx, "project total repaired",
				"project_id", p.ID, "stored", p.TotalExpenditure.String(), "derived", total.String())
		}
	}
	s.log.InfoContext(ctx, "budgets reconciled", "projects", len(projects), "repaired", fixed)
	return nil
}

func checkManager(ctx context.Context, tx *database.Store, id uint) (*models.User, error) {
	u, err := tx.Users.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fieldError("manager_id", "user does not exist")
	}
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleManager {
		return nil, fieldError("manager_id", "user is not a manager")
	}
	return u, nil
}
