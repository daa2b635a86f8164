package service

import (
	"context"
	"errors"
	"strings"

	"infraspend/database"
	"infraspend/models"
)

// CategoryInput is the payload of CreateCategory and UpdateCategory.
type CategoryInput struct {
	Name string `json:"name"`
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context, actor *models.User) ([]models.Category, error) {
	if err := s.policy.Can(actor, ActionList, ResourceCategory, Target{}); err != nil {
		return nil, err
	}
	return s.store.Categories.FindAll(ctx, nil)
}

func (s *Service) GetCategory(ctx context.Context, actor *models.User, id uint) (*models.Category, error) {
	if err := s.policy.Can(actor, ActionRead, ResourceCategory, Target{ID: id}); err != nil {
		return nil, err
	}
	c, err := s.store.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, actor *models.User, in CategoryInput) (*models.Category, error) {
	if err := s.policy.Can(actor, ActionCreate, ResourceCategory, Target{}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	fe := fieldErrors{}
	fe.required("name", name, 100)
	if err := fe.err(); err != nil {
		return nil, err
	}

	c := &models.Category{Name: name}
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := checkCategoryNameFree(ctx, tx, name, 0); err != nil {
			return err
		}
		return tx.Categories.Insert(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames a category. Expenditures keep the old name.
func (s *Service) UpdateCategory(ctx context.Context, actor *models.User, id uint, in CategoryInput) (*models.Category, error) {
	if err := s.policy.Can(actor, ActionUpdate, ResourceCategory, Target{ID: id}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	fe := fieldErrors{}
	fe.required("name", name, 100)
	if err := fe.err(); err != nil {
		return nil, err
	}

	var updated *models.Category
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := checkCategoryNameFree(ctx, tx, name, id); err != nil {
			return err
		}
		ok, err := tx.Categories.Update(ctx, id, map[string]any{"name": name})
		if err != nil {
			return err
		}
		if !ok {
			return notFound("category")
		}
		updated, err = tx.Categories.FindByID(ctx, id)
		return storeErr(err, "category")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category. Expenditures that use it are left as they are.
func (s *Service) DeleteCategory(ctx context.Context, actor *models.User, id uint) error {
	if err := s.policy.Can(actor, ActionDelete, ResourceCategory, Target{ID: id}); err != nil {
		return err
	}
	ok, err := s.store.Categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("category")
	}
	return nil
}

func checkCategoryNameFree(ctx context.Context, tx *database.Store, name string, self uint) error {
	_, err := tx.CategoryByName(ctx, name, self)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fieldError("name", "category already exists")
}
