package service

import (
	"context"
	"sort"

	"infraspend/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

// CategoryTotal is the approved spend of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dashboard aggregates the projects and expenditures visible to the actor.
type Dashboard struct {
	Projects       int `json:"projects"`
	ActiveProjects int `json:"active_projects"`
	BudgetSummary
	PendingAmount  decimal.Decimal                  `json:"pending_amount"`
	StatusCounts   map[models.ExpenditureStatus]int `json:"status_counts"`
	CategoryTotals []CategoryTotal                  `json:"category_totals"`
	Recent         []models.Expenditure             `json:"recent_expenditures"`
}

// Dashboard returns portfolio totals for admins and project totals for managers.
func (s *Service) Dashboard(ctx context.Context, actor *models.User) (*Dashboard, error) {
	if err := s.policy.Can(actor, ActionRead, ResourceDashboard, Target{}); err != nil {
		return nil, err
	}

	d := &Dashboard{
		BudgetSummary:  Summarize(decimal.Zero, decimal.Zero),
		PendingAmount:  decimal.Zero,
		StatusCounts:   map[models.ExpenditureStatus]int{models.StatusPending: 0, models.StatusApproved: 0, models.StatusRejected: 0},
		CategoryTotals: []CategoryTotal{},
		Recent:         []models.Expenditure{},
	}
	projectFilter, ok := s.policy.ProjectScope(actor)
	if !ok {
		return d, nil
	}
	expFilter, _ := s.policy.ExpenditureScope(actor)

	var (
		projects     []models.Project
		expenditures []models.Expenditure
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.store.Projects.FindAll(gctx, projectFilter)
		return err
	})
	g.Go(func() error {
		var err error
		expenditures, err = s.store.Expenditures.FindAll(gctx, expFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	budget, total := decimal.Zero, decimal.Zero
	for _, p := range projects {
		budget = budget.Add(p.Budget)
		total = total.Add(p.TotalExpenditure)
		if p.Status == models.ProjectActive {
			d.ActiveProjects++
		}
	}
	d.Projects = len(projects)
	d.BudgetSummary = Summarize(budget, total)

	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenditures {
		d.StatusCounts[e.Status]++
		switch e.Status {
		case models.StatusPending:
			d.PendingAmount = d.PendingAmount.Add(e.Amount)
		case models.StatusApproved:
			byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		}
	}
	for name, amount := range byCategory {
		d.CategoryTotals = append(d.CategoryTotals, CategoryTotal{Category: name, Amount: amount})
	}
	sort.Slice(d.CategoryTotals, func(i, j int) bool {
		if c := d.CategoryTotals[i].Amount.Cmp(d.CategoryTotals[j].Amount); c != 0 {
			return c > 0
		}
		return d.CategoryTotals[i].Category < d.CategoryTotals[j].Category
	})

	for i := len(expenditures) - 1; i >= 0 && len(d.Recent) < recentLimit; i-- {
		d.Recent = append(d.Recent, expenditures[i])
	}
	return d, nil
}

