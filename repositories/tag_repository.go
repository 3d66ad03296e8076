package repositories

import (
	"context"

	"blog-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	// EnsureByNames returns the tags for names, inserting missing ones. The
	// insert ignores name conflicts so concurrent callers never fail on a
	// duplicate; created counts the rows this call inserted.
	EnsureByNames(ctx context.Context, names []string) (tags []models.Tag, created int64, err error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	GetAll(ctx context.Context) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) EnsureByNames(ctx context.Context, names []string) ([]models.Tag, int64, error) {
	if len(names) == 0 {
		return nil, 0, nil
	}
	db := conn(ctx, r.db)

	var created int64
	for _, name := range names {
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.Tag{Name: name})
		if res.Error != nil {
			return nil, created, res.Error
		}
		created += res.RowsAffected
	}

	var tags []models.Tag
	if err := db.Where("name IN ?", names).Order("name asc").Find(&tags).Error; err != nil {
		return nil, created, err
	}
	return tags, created, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := conn(ctx, r.db).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, translateNotFound(err, "tag", name)
	}
	return &tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := conn(ctx, r.db).First(&tag, id).Error; err != nil {
		return nil, translateNotFound(err, "tag", id)
	}
	return &tag, nil
}

func (r *tagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := conn(ctx, r.db).Order("name asc").Find(&tags).Error
	return tags, err
}
