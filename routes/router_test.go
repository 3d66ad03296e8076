package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"blog-cms/config"
	"blog-cms/helper"
	"blog-cms/models"
	"blog-cms/repositories"
	"blog-cms/routes"
	"blog-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

type envelope[T any] struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage json.RawMessage `json:"code_message"`
	Data        T               `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	aliceToken string
	bobToken   string
	adminToken string
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (suite *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *IntegrationTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(models.AutoMigrate(db))
	suite.db = db

	conf := &config.AppConfig{
		Server: config.ServerConfig{AllowOrigins: []string{"*"}},
		JWT:    config.JWTConfig{Secret: "integration-secret", Expiration: time.Hour, CookieName: "access_token"},
		Admin:  config.AdminConfig{Username: "root", Email: "root@example.com", Password: "rootpass"},
	}

	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	authService := services.NewAuthService(userRepo, conf.JWT)
	suite.Require().NoError(authService.EnsureAdmin(context.Background(), conf.Admin))

	suite.router = routes.SetupRouter(routes.Deps{
		Config:          conf,
		ArticleService:  services.NewArticleService(articleRepo, tagRepo, userRepo, categoryRepo, repositories.NewTransactor(db), helper.NewSanitizer(), services.ArticleServiceOptions{}),
		AuthService:     authService,
		TagService:      services.NewTagService(tagRepo, articleRepo),
		CategoryService: services.NewCategoryService(categoryRepo, userRepo),
		HealthChecks:    map[string]routes.Pinger{"database": sqlDB.PingContext},
	})

	suite.aliceToken = suite.register("alice")
	suite.bobToken = suite.register("bob")
	suite.adminToken = suite.login("root", "rootpass")
}

func (suite *IntegrationTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (suite *IntegrationTestSuite) do(method, path, token string, body *strings.Reader, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *IntegrationTestSuite) get(path, token string) *httptest.ResponseRecorder {
	return suite.do(http.MethodGet, path, token, nil, "")
}

func (suite *IntegrationTestSuite) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	return suite.do(http.MethodPost, path, token, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (suite *IntegrationTestSuite) postJSON(path, token string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return suite.do(http.MethodPost, path, token, strings.NewReader(string(body)), "application/json")
}

func decode[T any](suite *IntegrationTestSuite, w *httptest.ResponseRecorder) envelope[T] {
	var env envelope[T]
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (suite *IntegrationTestSuite) register(username string) string {
	w := suite.postJSON("/Account/Register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return decode[models.AuthResponse](suite, w).Data.Token
}

func (suite *IntegrationTestSuite) login(username, password string) string {
	w := suite.postJSON("/Account/Login", "", models.LoginRequest{Username: username, Password: password})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return decode[models.AuthResponse](suite, w).Data.Token
}

func (suite *IntegrationTestSuite) createArticle(token, title, tags string) models.Article {
	w := suite.postForm("/Article/Create", token, url.Values{
		"title":   {title},
		"content": {"<p>body</p><script>alert(1)</script>"},
		"tags":    {tags},
	})
	suite.Require().Equal(http.StatusFound, w.Code, w.Body.String())
	suite.Equal("/Article/List", w.Header().Get("Location"))

	var article models.Article
	suite.Require().NoError(suite.db.Where("title = ?", title).First(&article).Error)
	return article
}

func (suite *IntegrationTestSuite) articleCount() int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(&models.Article{}).Count(&n).Error)
	return n
}

func (suite *IntegrationTestSuite) TestIndexRedirectsToList() {
	w := suite.get("/Article", "")
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("/Article/List", w.Header().Get("Location"))
}

func (suite *IntegrationTestSuite) TestCreateRequiresLogin() {
	w := suite.get("/Article/Create", "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.postForm("/Article/Create", "", url.Values{"title": {"t"}, "content": {"c"}})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Zero(suite.articleCount())
}

func (suite *IntegrationTestSuite) TestCreateAndList() {
	created := suite.createArticle(suite.aliceToken, "First post", "Go, rust rust")
	suite.Equal("<p>body</p>", created.Content)

	w := suite.get("/Article/List", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	articles := decode[[]models.Article](suite, w).Data
	suite.Require().Len(articles, 1)
	suite.Equal("alice", articles[0].Author.Username)
	suite.Require().Len(articles[0].Tags, 2)
	suite.Equal("go", articles[0].Tags[0].Name)
	suite.Equal("rust", articles[0].Tags[1].Name)
}

func (suite *IntegrationTestSuite) TestCreateValidationRedisplaysForm() {
	w := suite.postForm("/Article/Create", suite.aliceToken, url.Values{"content": {"no title"}, "tags": {"draft"}})

	suite.Equal(http.StatusOK, w.Code)
	env := decode[models.ArticleViewModel](suite, w)
	suite.Equal(http.StatusUnprocessableEntity, env.Code)
	suite.Equal("no title", env.Data.Content)
	suite.Equal("draft", env.Data.Tags)

	var messages map[string][]string
	suite.Require().NoError(json.Unmarshal(env.CodeMessage, &messages))
	suite.Contains(messages, "title")
	suite.Zero(suite.articleCount())
}

func (suite *IntegrationTestSuite) TestCreateRejectsInputBlankAfterNormalizing() {
	cases := []struct {
		form  url.Values
		field string
	}{
		{url.Values{"title": {"   "}, "content": {"body"}, "tags": {"draft"}}, "title"},
		{url.Values{"title": {"Hello"}, "content": {"<script>x</script>"}, "tags": {"draft"}}, "content"},
	}
	for _, tc := range cases {
		w := suite.postForm("/Article/Create", suite.aliceToken, tc.form)

		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		env := decode[models.ArticleViewModel](suite, w)
		suite.Equal(http.StatusUnprocessableEntity, env.Code)
		suite.Equal(tc.form.Get("title"), env.Data.Title)
		suite.Equal(tc.form.Get("content"), env.Data.Content)
		suite.Equal("draft", env.Data.Tags)

		var messages map[string][]string
		suite.Require().NoError(json.Unmarshal(env.CodeMessage, &messages))
		suite.Contains(messages, tc.field)
	}
	suite.Zero(suite.articleCount())
}

func (suite *IntegrationTestSuite) TestEditRejectsInputBlankAfterNormalizing() {
	article := suite.createArticle(suite.aliceToken, "Kept", "go")

	w := suite.postForm("/Article/Edit", suite.aliceToken, url.Values{
		"id":      {fmt.Sprint(article.ID)},
		"title":   {"Kept"},
		"content": {"<script>x</script>"},
		"tags":    {"go"},
	})

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	env := decode[models.ArticleViewModel](suite, w)
	suite.Equal(http.StatusUnprocessableEntity, env.Code)
	suite.Equal(article.ID, env.Data.ID)
	suite.Equal("<script>x</script>", env.Data.Content)

	var reloaded models.Article
	suite.Require().NoError(suite.db.First(&reloaded, article.ID).Error)
	suite.Equal("<p>body</p>", reloaded.Content)
}

func (suite *IntegrationTestSuite) TestDetails() {
	article := suite.createArticle(suite.aliceToken, "Counted", "")

	suite.Equal(http.StatusBadRequest, suite.get("/Article/Details", "").Code)
	suite.Equal(http.StatusBadRequest, suite.get("/Article/Details/abc", "").Code)
	suite.Equal(http.StatusNotFound, suite.get("/Article/Details/9999", "").Code)

	var last models.Article
	for i := 0; i < 3; i++ {
		w := suite.get(fmt.Sprintf("/Article/Details/%d", article.ID), "")
		suite.Require().Equal(http.StatusOK, w.Code)
		last = decode[models.Article](suite, w).Data
	}
	suite.EqualValues(3, last.Views)

	w := suite.get(fmt.Sprintf("/Article/Details?id=%d", article.ID), "")
	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(4, decode[models.Article](suite, w).Data.Views)
}

func (suite *IntegrationTestSuite) TestEditAuthorization() {
	article := suite.createArticle(suite.aliceToken, "Owned", "go")

	suite.Equal(http.StatusBadRequest, suite.get("/Article/Edit", suite.bobToken).Code)
	suite.Equal(http.StatusNotFound, suite.get("/Article/Edit/9999", suite.bobToken).Code)
	suite.Equal(http.StatusForbidden, suite.get(fmt.Sprintf("/Article/Edit/%d", article.ID), suite.bobToken).Code)

	w := suite.postForm("/Article/Edit", suite.bobToken, url.Values{
		"id":      {fmt.Sprint(article.ID)},
		"title":   {"Hijacked"},
		"content": {"x"},
	})
	suite.Equal(http.StatusForbidden, w.Code)

	var reloaded models.Article
	suite.Require().NoError(suite.db.First(&reloaded, article.ID).Error)
	suite.Equal("Owned", reloaded.Title)
}

func (suite *IntegrationTestSuite) TestEditByOwner() {
	article := suite.createArticle(suite.aliceToken, "Draft", "go rust")

	w := suite.get(fmt.Sprintf("/Article/Edit/%d", article.ID), suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("go, rust", decode[models.ArticleViewModel](suite, w).Data.Tags)

	w = suite.postForm("/Article/Edit", suite.aliceToken, url.Values{
		"id":      {fmt.Sprint(article.ID)},
		"title":   {"Final"},
		"content": {"done"},
		"tags":    {"go, zig"},
	})
	suite.Require().Equal(http.StatusFound, w.Code, w.Body.String())

	w = suite.get(fmt.Sprintf("/Article/Details/%d", article.ID), "")
	updated := decode[models.Article](suite, w).Data
	suite.Equal("Final", updated.Title)
	suite.Equal("alice", updated.Author.Username)
	suite.Require().Len(updated.Tags, 2)
	suite.Equal("zig", updated.Tags[1].Name)

	// Editing with the same tags does not create duplicates.
	w = suite.postForm("/Article/Edit", suite.adminToken, url.Values{
		"id":      {fmt.Sprint(article.ID)},
		"title":   {"Final"},
		"content": {"done"},
		"tags":    {"zig go"},
	})
	suite.Require().Equal(http.StatusFound, w.Code)
	var tagCount int64
	suite.Require().NoError(suite.db.Model(&models.Tag{}).Count(&tagCount).Error)
	suite.EqualValues(3, tagCount)
}

func (suite *IntegrationTestSuite) TestDelete() {
	article := suite.createArticle(suite.aliceToken, "Doomed", "go")
	path := fmt.Sprintf("/Article/Delete/%d", article.ID)

	suite.Equal(http.StatusNotFound, suite.postForm("/Article/Delete/9999", suite.adminToken, url.Values{}).Code)
	suite.Equal(http.StatusForbidden, suite.get(path, suite.bobToken).Code)
	suite.Equal(http.StatusForbidden, suite.postForm(path, suite.bobToken, url.Values{}).Code)
	suite.EqualValues(1, suite.articleCount())

	w := suite.get(path, suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("go", decode[models.ArticleDeleteModel](suite, w).Data.Tags)

	w = suite.postForm("/Article/Delete", suite.adminToken, url.Values{"id": {fmt.Sprint(article.ID)}})
	suite.Equal(http.StatusFound, w.Code)
	suite.Zero(suite.articleCount())
	suite.Equal(http.StatusNotFound, suite.get(fmt.Sprintf("/Article/Details/%d", article.ID), "").Code)
}

func (suite *IntegrationTestSuite) TestDeleteWithJSONBody() {
	article := suite.createArticle(suite.aliceToken, "Posted", "")

	w := suite.postJSON("/Article/Delete", suite.aliceToken, map[string]uint{"id": article.ID})

	suite.Equal(http.StatusFound, w.Code, w.Body.String())
	suite.Zero(suite.articleCount())
}

func (suite *IntegrationTestSuite) TestDemotedAdminLosesRightsBeforeTokenExpires() {
	article := suite.createArticle(suite.aliceToken, "Guarded", "")
	suite.Require().NoError(suite.db.Model(&models.User{}).
		Where("username = ?", "root").
		Update("role", models.RoleAuthor).Error)

	w := suite.postJSON("/Category/Create", suite.adminToken, models.CreateCategoryRequest{Name: "News"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.postForm(fmt.Sprintf("/Article/Delete/%d", article.ID), suite.adminToken, url.Values{})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.EqualValues(1, suite.articleCount())
}

func (suite *IntegrationTestSuite) TestCategories() {
	w := suite.postJSON("/Category/Create", suite.aliceToken, models.CreateCategoryRequest{Name: "News"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.postJSON("/Category/Create", suite.adminToken, models.CreateCategoryRequest{Name: "News"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	category := decode[models.Category](suite, w).Data

	w = suite.postJSON("/Category/Create", suite.adminToken, models.CreateCategoryRequest{Name: "News"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.postForm("/Article/Create", suite.aliceToken, url.Values{
		"title":       {"Categorised"},
		"content":     {"c"},
		"category_id": {fmt.Sprint(category.ID)},
	})
	suite.Require().Equal(http.StatusFound, w.Code, w.Body.String())

	w = suite.postForm("/Article/Create", suite.aliceToken, url.Values{
		"title":       {"Bad category"},
		"content":     {"c"},
		"category_id": {"9999"},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.get("/Article/Create", suite.aliceToken)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(decode[models.ArticleViewModel](suite, w).Data.Categories, 1)
}

func (suite *IntegrationTestSuite) TestTags() {
	suite.createArticle(suite.aliceToken, "Tagged", "go rust")

	w := suite.get("/Tag/List", "")
	suite.Require().Equal(http.StatusOK, w.Code)
	tags := decode[[]models.Tag](suite, w).Data
	suite.Require().Len(tags, 2)

	w = suite.get(fmt.Sprintf("/Tag/Details/%d", tags[0].ID), "")
	suite.Require().Equal(http.StatusOK, w.Code)
	details := decode[models.TagDetails](suite, w).Data
	suite.Equal("go", details.Tag.Name)
	suite.Len(details.Articles, 1)

	suite.Equal(http.StatusNotFound, suite.get("/Tag/Details/9999", "").Code)
}

func (suite *IntegrationTestSuite) TestAccount() {
	w := suite.postJSON("/Account/Register", "", models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password123"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.postJSON("/Account/Register", "", map[string]string{"username": "x"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.postJSON("/Account/Login", "", models.LoginRequest{Username: "alice", Password: "wrong"})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.postJSON("/Account/Login", "", models.LoginRequest{Username: "alice", Password: "password123"})
	suite.Require().Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	req := httptest.NewRequest(http.MethodGet, "/Account/Profile", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("alice", decode[models.User](suite, w).Data.Username)

	suite.Equal(http.StatusUnauthorized, suite.get("/Account/Profile", "").Code)
}

func (suite *IntegrationTestSuite) TestHealthAndMetrics() {
	w := suite.get("/health", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"healthy"`)

	w = suite.get("/metrics", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.True(bytes.Contains(w.Body.Bytes(), []byte("blog_http_requests_total")))
}
