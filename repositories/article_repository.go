package repositories

import (
	"context"
	"time"

	"blog-cms/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleRepository interface {
	List(ctx context.Context) ([]models.Article, error)
	ListByTag(ctx context.Context, tagID uint) ([]models.Article, error)
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	UpdateContent(ctx context.Context, id uint, title, content string, categoryID *uint) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	// CurrentTagIDs reads the article's tag associations. Inside a transaction
	// it sees the rows committed before the article row was locked.
	CurrentTagIDs(ctx context.Context, articleID uint) ([]uint, error)
	ReplaceTags(ctx context.Context, articleID uint, add, remove []uint) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) withRelations(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Author").
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name asc")
		})
}

func (r *articleRepository) List(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.withRelations(ctx).
		Order("articles.created_at desc, articles.id desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) ListByTag(ctx context.Context, tagID uint) ([]models.Article, error) {
	var articles []models.Article
	err := conn(ctx, r.db).
		Preload("Author").
		Joins("JOIN article_tags ON article_tags.article_id = articles.id").
		Where("article_tags.tag_id = ?", tagID).
		Order("articles.created_at desc, articles.id desc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.withRelations(ctx).First(&article, id).Error; err != nil {
		return nil, translateNotFound(err, "article", id)
	}
	return &article, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(article).Error
}

// UpdateContent writes only the editable columns; author and views are never touched.
func (r *articleRepository) UpdateContent(ctx context.Context, id uint, title, content string, categoryID *uint) error {
	res := conn(ctx, r.db).Model(&models.Article{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       title,
			"content":     content,
			"category_id": categoryID,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrorNotFound{Resource: "article", ID: id}
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, r.db)
	if err := db.Where("article_id = ?", id).Delete(&models.ArticleTag{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Article{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrorNotFound{Resource: "article", ID: id}
	}
	return nil
}

func (r *articleRepository) IncrementViews(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrorNotFound{Resource: "article", ID: id}
	}
	return nil
}

func (r *articleRepository) CurrentTagIDs(ctx context.Context, articleID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.ArticleTag{}).
		Where("article_id = ?", articleID).
		Order("tag_id asc").
		Pluck("tag_id", &ids).Error
	return ids, err
}

// ReplaceTags applies a precomputed diff to the article's tag associations.
func (r *articleRepository) ReplaceTags(ctx context.Context, articleID uint, add, remove []uint) error {
	db := conn(ctx, r.db)
	if len(remove) > 0 {
		if err := db.Where("article_id = ? AND tag_id IN ?", articleID, remove).
			Delete(&models.ArticleTag{}).Error; err != nil {
			return err
		}
	}
	if len(add) == 0 {
		return nil
	}
	rows := make([]models.ArticleTag, 0, len(add))
	for _, tagID := range add {
		rows = append(rows, models.ArticleTag{ArticleID: articleID, TagID: tagID})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
