package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"blog-cms/metrics"
	"blog-cms/models"
	"blog-cms/repositories"
)

type ArticleService interface {
	List(ctx context.Context) ([]models.Article, error)
	Details(ctx context.Context, id uint) (*models.Article, error)
	CreateForm(ctx context.Context, caller models.Identity) (*models.ArticleViewModel, error)
	Create(ctx context.Context, caller models.Identity, in models.ArticleInput) (*models.Article, error)
	EditForm(ctx context.Context, caller models.Identity, id uint) (*models.ArticleViewModel, error)
	Edit(ctx context.Context, caller models.Identity, in models.ArticleInput) error
	DeleteForm(ctx context.Context, caller models.Identity, id uint) (*models.ArticleDeleteModel, error)
	Delete(ctx context.Context, caller models.Identity, id uint) error
	// FormModel rebuilds a form from rejected input so it can be shown again.
	FormModel(ctx context.Context, in models.ArticleInput) (*models.ArticleViewModel, error)
}

// ContentSanitizer cleans user supplied article bodies before they are stored.
type ContentSanitizer interface {
	Sanitize(content string) string
}

type ArticleServiceOptions struct {
	// BestEffortViews keeps Details working when the view increment fails.
	BestEffortViews bool
	Logger          *slog.Logger
}

type articleService struct {
	articleRepo  repositories.ArticleRepository
	tagRepo      repositories.TagRepository
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	tx           repositories.Transactor
	sanitizer    ContentSanitizer
	opts         ArticleServiceOptions
	logger       *slog.Logger
}

func NewArticleService(
	articleRepo repositories.ArticleRepository,
	tagRepo repositories.TagRepository,
	userRepo repositories.UserRepository,
	categoryRepo repositories.CategoryRepository,
	tx repositories.Transactor,
	sanitizer ContentSanitizer,
	opts ArticleServiceOptions,
) ArticleService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &articleService{
		articleRepo:  articleRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		sanitizer:    sanitizer,
		opts:         opts,
		logger:       logger.With("component", "article_service"),
	}
}

func (s *articleService) List(ctx context.Context) ([]models.Article, error) {
	return s.articleRepo.List(ctx)
}

func (s *articleService) Details(ctx context.Context, id uint) (*models.Article, error) {
	if id == 0 {
		return nil, errMissingArticleID
	}

	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.articleRepo.IncrementViews(ctx, id); err != nil {
		if !s.opts.BestEffortViews {
			return nil, fmt.Errorf("increment views of article %d: %w", id, err)
		}
		s.logger.WarnContext(ctx, "view increment failed", "article_id", id, "error", err)
		return article, nil
	}
	article.Views++
	metrics.ArticleViewsTotal.Inc()

	return article, nil
}

func (s *articleService) CreateForm(ctx context.Context, caller models.Identity) (*models.ArticleViewModel, error) {
	if !caller.IsAuthenticated() {
		return nil, errLoginRequired
	}
	categories, err := s.categoryRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ArticleViewModel{Categories: categories}, nil
}

func (s *articleService) Create(ctx context.Context, caller models.Identity, in models.ArticleInput) (article *models.Article, err error) {
	defer func() { metrics.RecordMutation("create", err) }()

	if !caller.IsAuthenticated() {
		return nil, errLoginRequired
	}

	title, content, err := s.normalizeInput(in)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByUsername(ctx, caller.Username)
	if err != nil {
		var nf models.ErrorNotFound
		if errors.As(err, &nf) {
			return nil, models.ErrorUnauthorized{Message: "unknown author " + caller.Username}
		}
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tagNames, err := parseTagInput(in.Tags)
	if err != nil {
		return nil, err
	}

	article = &models.Article{
		Title:      title,
		Content:    content,
		AuthorID:   author.ID,
		CategoryID: categoryID,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.articleRepo.Create(ctx, article); err != nil {
			return err
		}
		return s.reconcileTags(ctx, article.ID, nil, tagNames)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "article created", "article_id", article.ID, "author", author.Username)
	return article, nil
}

func (s *articleService) EditForm(ctx context.Context, caller models.Identity, id uint) (*models.ArticleViewModel, error) {
	article, err := s.loadEditable(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ArticleViewModel{
		ID:         article.ID,
		Title:      article.Title,
		Content:    article.Content,
		CategoryID: article.CategoryID,
		Categories: categories,
		Tags:       JoinTags(article.Tags),
	}, nil
}

func (s *articleService) Edit(ctx context.Context, caller models.Identity, in models.ArticleInput) (err error) {
	defer func() { metrics.RecordMutation("edit", err) }()

	article, err := s.loadEditable(ctx, caller, in.ID)
	if err != nil {
		return err
	}

	title, content, err := s.normalizeInput(in)
	if err != nil {
		return err
	}
	categoryID, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	tagNames, err := parseTagInput(in.Tags)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The update locks the article row, so concurrent edits serialize here
		// and the tag diff below is taken against the previous writer's result.
		if err := s.articleRepo.UpdateContent(ctx, article.ID, title, content, categoryID); err != nil {
			return err
		}
		current, err := s.articleRepo.CurrentTagIDs(ctx, article.ID)
		if err != nil {
			return err
		}
		return s.reconcileTags(ctx, article.ID, current, tagNames)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "article edited", "article_id", article.ID, "editor", caller.Username)
	return nil
}

func (s *articleService) DeleteForm(ctx context.Context, caller models.Identity, id uint) (*models.ArticleDeleteModel, error) {
	article, err := s.loadEditable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &models.ArticleDeleteModel{
		Article: *article,
		Tags:    JoinTags(article.Tags),
	}, nil
}

func (s *articleService) Delete(ctx context.Context, caller models.Identity, id uint) (err error) {
	defer func() { metrics.RecordMutation("delete", err) }()

	article, err := s.loadEditable(ctx, caller, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.articleRepo.Delete(ctx, article.ID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "article deleted", "article_id", article.ID, "by", caller.Username)
	return nil
}

func (s *articleService) FormModel(ctx context.Context, in models.ArticleInput) (*models.ArticleViewModel, error) {
	categories, err := s.categoryRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	vm := &models.ArticleViewModel{Categories: categories}
	vm.FromInput(in)
	return vm, nil
}

// loadEditable checks, in order: id present, article exists, caller may edit it.
func (s *articleService) loadEditable(ctx context.Context, caller models.Identity, id uint) (*models.Article, error) {
	if id == 0 {
		return nil, errMissingArticleID
	}
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	caller, err = storedIdentity(ctx, s.userRepo, caller)
	if err != nil {
		return nil, err
	}
	if !IsAuthorizedToEdit(caller, article) {
		return nil, models.ErrorForbidden{Message: "only the author or an admin may change this article"}
	}
	return article, nil
}

// normalizeInput trims the title and sanitizes the content, then rejects
// either one if nothing is left.
func (s *articleService) normalizeInput(in models.ArticleInput) (title, content string, err error) {
	title = strings.TrimSpace(in.Title)
	if title == "" {
		return "", "", models.ErrorValidation{Field: "title", Message: "title must not be blank"}
	}
	content = s.sanitizer.Sanitize(in.Content)
	if strings.TrimSpace(content) == "" {
		return "", "", models.ErrorValidation{Field: "content", Message: "content must not be blank"}
	}
	return title, content, nil
}

func (s *articleService) resolveCategory(ctx context.Context, id *uint) (*uint, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *id); err != nil {
		var nf models.ErrorNotFound
		if errors.As(err, &nf) {
			return nil, models.ErrorBadRequest{Message: fmt.Sprintf("category %d does not exist", *id)}
		}
		return nil, err
	}
	categoryID := *id
	return &categoryID, nil
}

// reconcileTags makes the article's tag set equal to names, creating missing
// tags and touching only the associations that change.
func (s *articleService) reconcileTags(ctx context.Context, articleID uint, current []uint, names []string) error {
	tags, created, err := s.tagRepo.EnsureByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("ensure tags: %w", err)
	}
	if created > 0 {
		metrics.TagsCreatedTotal.Add(float64(created))
	}

	desired := make([]uint, 0, len(tags))
	for _, t := range tags {
		desired = append(desired, t.ID)
	}

	add, remove := DiffTagIDs(current, desired)
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	return s.articleRepo.ReplaceTags(ctx, articleID, add, remove)
}

func parseTagInput(raw string) ([]string, error) {
	names := ParseTags(raw)
	for _, name := range names {
		if utf8.RuneCountInString(name) > maxTagLength {
			return nil, models.ErrorBadRequest{Message: fmt.Sprintf("tags may not be longer than %d characters", maxTagLength)}
		}
	}
	return names, nil
}

var (
	errMissingArticleID = models.ErrorBadRequest{Message: "article id is required"}
	errLoginRequired    = models.ErrorUnauthorized{Message: "login required"}
)
