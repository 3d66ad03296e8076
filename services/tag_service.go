package services

import (
	"context"

	"blog-cms/models"
	"blog-cms/repositories"
)

type TagService interface {
	GetTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.TagDetails, error)
}

type tagService struct {
	tagRepo     repositories.TagRepository
	articleRepo repositories.ArticleRepository
}

func NewTagService(tagRepo repositories.TagRepository, articleRepo repositories.ArticleRepository) TagService {
	return &tagService{
		tagRepo:     tagRepo,
		articleRepo: articleRepo,
	}
}

func (s *tagService) GetTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

// GetTag returns the tag together with every article that carries it.
func (s *tagService) GetTag(ctx context.Context, id uint) (*models.TagDetails, error) {
	if id == 0 {
		return nil, models.ErrorBadRequest{Message: "tag id is required"}
	}
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := s.articleRepo.ListByTag(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TagDetails{Tag: *tag, Articles: articles}, nil
}
