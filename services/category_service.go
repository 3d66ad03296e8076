package services

import (
	"context"
	"strings"

	"blog-cms/models"
	"blog-cms/repositories"
)

type CategoryService interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, caller models.Identity, req models.CreateCategoryRequest) (*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	userRepo     repositories.UserRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, userRepo repositories.UserRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, userRepo: userRepo}
}

func (s *categoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.ListOrdered(ctx)
}

func (s *categoryService) CreateCategory(ctx context.Context, caller models.Identity, req models.CreateCategoryRequest) (*models.Category, error) {
	caller, err := storedIdentity(ctx, s.userRepo, caller)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, models.ErrorForbidden{Message: "only admins can create categories"}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.ErrorBadRequest{Message: "category name is required"}
	}
	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
