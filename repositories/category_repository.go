package repositories

import (
	"context"

	"blog-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	ListOrdered(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListOrdered(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := conn(ctx, r.db).Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, translateNotFound(err, "category", id)
	}
	return &category, nil
}

// Create inserts category, returning ErrorConflict when the name is taken.
// The unique index decides, so two concurrent creates cannot both succeed.
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	res := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(category)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrorConflict{Message: "category already exists"}
	}
	return nil
}
