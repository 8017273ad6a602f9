package service

import (
	"context"
	"errors"
	"testing"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/apperror"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
)

// mockCategoryRepository реализует CategoryRepository для тестов.
type mockCategoryRepository struct {
	categories map[string]*models.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[string]*models.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepository) Get(ctx context.Context, filter models.CategoryFilter) (*models.Category, error) {
	for _, category := range m.categories {
		if matchCategory(category, filter) {
			return category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	var out []models.Category
	for _, category := range m.categories {
		if matchCategory(category, filter) {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, filter models.CategoryFilter, update models.CategoryUpdate) (*models.Category, error) {
	category, err := m.Get(ctx, filter)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		category.Name = *update.Name
	}
	if update.Color != nil {
		category.Color = update.Color
	}
	return category, nil
}

// Delete повторяет семантику DELETE в боевом репозитории: ошибка
// возвращается только когда ни одна строка не подошла под фильтр.
func (m *mockCategoryRepository) Delete(ctx context.Context, filter models.CategoryFilter) error {
	deleted := 0
	for id, category := range m.categories {
		if matchCategory(category, filter) {
			delete(m.categories, id)
			deleted++
		}
	}
	if deleted == 0 {
		return repository.ErrCategoryNotFound
	}
	return nil
}

func matchCategory(category *models.Category, filter models.CategoryFilter) bool {
	if filter.ID != "" && category.ID != filter.ID {
		return false
	}
	if filter.UserID != "" && (category.UserID == nil || *category.UserID != filter.UserID) {
		return false
	}
	if filter.UserOrNull != "" && category.UserID != nil && *category.UserID != filter.UserOrNull {
		return false
	}
	return true
}

func TestCategoryService_Visibility(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	aliceID := "alice"
	repo.categories["personal"] = &models.Category{ID: "personal", UserID: &aliceID, Name: "Личное"}
	repo.categories["global"] = &models.Category{ID: "global", Name: "Работа"}

	// Владелец видит свою категорию, чужой пользователь — нет.
	if _, err := service.Get(ctx, "alice", "personal"); err != nil {
		t.Fatalf("владелец должен видеть свою категорию: %v", err)
	}
	if _, err := service.Get(ctx, "bob", "personal"); !errors.Is(err, apperror.ErrCategoryNotFound) {
		t.Fatalf("чужая категория должна быть невидима, получили %v", err)
	}

	// Общая категория видна всем.
	if _, err := service.Get(ctx, "bob", "global"); err != nil {
		t.Fatalf("общая категория должна быть видна всем: %v", err)
	}

	categories, err := service.List(ctx, "alice")
	if err != nil || len(categories) != 2 {
		t.Fatalf("ожидались личная и общая категории, получили %d (%v)", len(categories), err)
	}
}

func TestCategoryService_DeleteOwnership(t *testing.T) {
	repo := newMockCategoryRepository()
	service := NewCategoryService(repo)
	ctx := context.Background()

	aliceID := "alice"
	repo.categories["personal"] = &models.Category{ID: "personal", UserID: &aliceID, Name: "Личное"}
	repo.categories["global"] = &models.Category{ID: "global", Name: "Работа"}

	if err := service.Delete(ctx, "alice", "missing"); !errors.Is(err, apperror.ErrCategoryNotFound) {
		t.Fatalf("удаление несуществующей категории должно давать ErrCategoryNotFound, получили %v", err)
	}
	if err := service.Delete(ctx, "bob", "personal"); !errors.Is(err, apperror.ErrCategoryNotFound) {
		t.Fatalf("чужую категорию нельзя удалить, получили %v", err)
	}
	if err := service.Delete(ctx, "alice", "global"); !errors.Is(err, apperror.ErrCategoryNotFound) {
		t.Fatalf("общую категорию нельзя удалить через пользовательский путь, получили %v", err)
	}

	if err := service.Delete(ctx, "alice", "personal"); err != nil {
		t.Fatalf("удаление своей категории вернуло ошибку: %v", err)
	}
	if err := service.Delete(ctx, "alice", "personal"); !errors.Is(err, apperror.ErrCategoryNotFound) {
		t.Fatalf("повторное удаление должно давать ErrCategoryNotFound, получили %v", err)
	}
}
