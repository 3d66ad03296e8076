package handlers

import (
	"errors"
	"strconv"

	"blog-cms/helper"
	"blog-cms/middleware"
	"blog-cms/models"
	"blog-cms/services"

	"github.com/gin-gonic/gin"
)

const articleListPath = "/Article/List"

type ArticleHandler struct {
	articleService services.ArticleService
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, httpHelper *helper.HTTPHelper) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, Helper: httpHelper}
}

// articleID reads the id from the path, otherwise from the query, posted
// form or JSON body. A missing or malformed id is reported as 0.
func articleID(c *gin.Context) uint {
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0
		}
		return uint(id)
	}
	var body struct {
		ID uint `form:"id" json:"id"`
	}
	if err := c.ShouldBind(&body); err != nil {
		return 0
	}
	return body.ID
}

func (h *ArticleHandler) Index(c *gin.Context) {
	h.Helper.Redirect(c, articleListPath)
}

func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", articles)
}

func (h *ArticleHandler) Details(c *gin.Context) {
	article, err := h.articleService.Details(c.Request.Context(), articleID(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", article)
}

func (h *ArticleHandler) CreateForm(c *gin.Context) {
	vm, err := h.articleService.CreateForm(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", vm)
}

func (h *ArticleHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CurrentIdentity(c)

	var in models.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		h.redisplayCreate(c, in, err)
		return
	}

	if _, err := h.articleService.Create(ctx, caller, in); err != nil {
		var verr models.ErrorValidation
		if errors.As(err, &verr) {
			h.redisplayCreate(c, in, err)
			return
		}
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.Redirect(c, articleListPath)
}

func (h *ArticleHandler) EditForm(c *gin.Context) {
	vm, err := h.articleService.EditForm(c.Request.Context(), middleware.CurrentIdentity(c), articleID(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", vm)
}

func (h *ArticleHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CurrentIdentity(c)

	var in models.ArticleInput
	if err := c.ShouldBind(&in); err != nil {
		h.redisplayEdit(c, caller, in, err)
		return
	}

	if err := h.articleService.Edit(ctx, caller, in); err != nil {
		var verr models.ErrorValidation
		if errors.As(err, &verr) {
			h.redisplayEdit(c, caller, in, err)
			return
		}
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.Redirect(c, articleListPath)
}

func (h *ArticleHandler) DeleteForm(c *gin.Context) {
	model, err := h.articleService.DeleteForm(c.Request.Context(), middleware.CurrentIdentity(c), articleID(c))
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", model)
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articleService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), articleID(c)); err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}

	h.Helper.Redirect(c, articleListPath)
}

// redisplayCreate answers a rejected create with the submitted form.
func (h *ArticleHandler) redisplayCreate(c *gin.Context, in models.ArticleInput, cause error) {
	vm, err := h.articleService.FormModel(c.Request.Context(), in)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	h.Helper.SendValidationError(c, cause, vm)
}

// redisplayEdit answers a rejected edit with the submitted form. The form is
// only shown again to callers allowed to edit the article.
func (h *ArticleHandler) redisplayEdit(c *gin.Context, caller models.Identity, in models.ArticleInput, cause error) {
	vm, err := h.articleService.EditForm(c.Request.Context(), caller, in.ID)
	if err != nil {
		h.Helper.SendErrorFrom(c, err)
		return
	}
	vm.FromInput(in)
	h.Helper.SendValidationError(c, cause, vm)
}
