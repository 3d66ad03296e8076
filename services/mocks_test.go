package services

import (
	"context"

	"blog-cms/models"

	"github.com/stretchr/testify/mock"
)

type mockArticleRepo struct{ mock.Mock }

func (m *mockArticleRepo) List(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	articles, _ := args.Get(0).([]models.Article)
	return articles, args.Error(1)
}

func (m *mockArticleRepo) ListByTag(ctx context.Context, tagID uint) ([]models.Article, error) {
	args := m.Called(ctx, tagID)
	articles, _ := args.Get(0).([]models.Article)
	return articles, args.Error(1)
}

func (m *mockArticleRepo) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	args := m.Called(ctx, id)
	article, _ := args.Get(0).(*models.Article)
	return article, args.Error(1)
}

func (m *mockArticleRepo) Create(ctx context.Context, article *models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *mockArticleRepo) UpdateContent(ctx context.Context, id uint, title, content string, categoryID *uint) error {
	return m.Called(ctx, id, title, content, categoryID).Error(0)
}

func (m *mockArticleRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockArticleRepo) IncrementViews(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockArticleRepo) CurrentTagIDs(ctx context.Context, articleID uint) ([]uint, error) {
	args := m.Called(ctx, articleID)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

func (m *mockArticleRepo) ReplaceTags(ctx context.Context, articleID uint, add, remove []uint) error {
	return m.Called(ctx, articleID, add, remove).Error(0)
}

type mockTagRepo struct{ mock.Mock }

func (m *mockTagRepo) EnsureByNames(ctx context.Context, names []string) ([]models.Tag, int64, error) {
	args := m.Called(ctx, names)
	tags, _ := args.Get(0).([]models.Tag)
	return tags, args.Get(1).(int64), args.Error(2)
}

func (m *mockTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	tag, _ := args.Get(0).(*models.Tag)
	return tag, args.Error(1)
}

func (m *mockTagRepo) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	args := m.Called(ctx, id)
	tag, _ := args.Get(0).(*models.Tag)
	return tag, args.Error(1)
}

func (m *mockTagRepo) GetAll(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]models.Tag)
	return tags, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) ListOrdered(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

// passthroughTx runs fn directly and counts how often it was asked to.
type passthroughTx struct{ calls int }

func (t *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type prefixSanitizer struct{}

func (prefixSanitizer) Sanitize(content string) string { return "clean:" + content }
