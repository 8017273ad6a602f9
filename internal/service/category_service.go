package service

import (
	"context"
	"errors"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/apperror"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/ident"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
)

// CategoryRepository описывает хранилище категорий.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Get(ctx context.Context, filter models.CategoryFilter) (*models.Category, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error)
	Update(ctx context.Context, filter models.CategoryFilter, update models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, filter models.CategoryFilter) error
}

// CategoryService управляет категориями задач. Пользователь видит
// собственные категории и общие (без владельца), менять может только свои.
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService создаёт сервис категорий.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create заводит личную категорию пользователя.
func (s *CategoryService) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == "" {
		category.ID = ident.NewID()
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Get возвращает категорию, видимую пользователю.
func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	category, err := s.repo.Get(ctx, models.CategoryFilter{ID: categoryID, UserOrNull: userID})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// List возвращает категории, видимые пользователю: его личные и общие.
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	return s.repo.List(ctx, models.CategoryFilter{UserOrNull: userID})
}

// Update изменяет личную категорию пользователя. Общие категории
// пользователю не принадлежат и через этот путь не меняются.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, update models.CategoryUpdate) (*models.Category, error) {
	category, err := s.repo.Update(ctx, models.CategoryFilter{ID: categoryID, UserID: userID}, update)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Delete удаляет личную категорию пользователя.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if err := s.repo.Delete(ctx, models.CategoryFilter{ID: categoryID, UserID: userID}); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrCategoryNotFound
		}
		return err
	}
	return nil
}
