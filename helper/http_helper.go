package helper

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"blog-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	textError = `error`
	textOk    = `ok`

	codeSuccess             = http.StatusOK
	codeBadRequestError     = http.StatusBadRequest
	codeUnauthorizedError   = http.StatusUnauthorized
	codeForbiddenError      = http.StatusForbidden
	codeNotFound            = http.StatusNotFound
	codeConflict            = http.StatusConflict
	codeValidationError     = http.StatusUnprocessableEntity
	codeTooManyRequests     = http.StatusTooManyRequests
	codeInternalServerError = http.StatusInternalServerError
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  string
	Data     interface{}
	Code     int
	CodeType string
}

// HTTPHelper writes the {code, code_type, code_message, data} envelope.
type HTTPHelper struct {
	Translator ut.Translator
}

var registerTranslations sync.Once

// NewHTTPHelper wires English validation messages into gin's validator.
func NewHTTPHelper() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	registerTranslations.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			slog.Warn("register validation translations", "error", err)
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			slog.Warn("register notblank validation", "error", err)
		}
		err := v.RegisterTranslation("notblank", trans,
			func(ut ut.Translator) error {
				return ut.Add("notblank", "{0} must not be blank", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("notblank", fe.Field())
				return t
			})
		if err != nil {
			slog.Warn("register notblank translation", "error", err)
		}
	})

	return &HTTPHelper{Translator: trans}
}

// GetStatusCode maps a service error onto an HTTP status.
func (u *HTTPHelper) GetStatusCode(err error) int {
	var (
		badRequest   models.ErrorBadRequest
		unauthorized models.ErrorUnauthorized
		forbidden    models.ErrorForbidden
		notFound     models.ErrorNotFound
		conflict     models.ErrorConflict
		validation   models.ErrorValidation
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendErrorFrom picks status and code type from a service error. Internal
// errors are logged and replaced with a generic message.
func (u *HTTPHelper) SendErrorFrom(c *gin.Context, err error) error {
	code := u.GetStatusCode(err)
	switch code {
	case http.StatusBadRequest:
		return u.SendBadRequest(c, err.Error(), u.EmptyJsonMap())
	case http.StatusUnauthorized:
		return u.SendUnauthorizedError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusForbidden:
		return u.SendForbiddenError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusNotFound:
		return u.SendNotFoundError(c, err.Error(), u.EmptyJsonMap())
	case http.StatusConflict:
		return u.SendError(c, err.Error(), u.EmptyJsonMap(), codeConflict, `conflict`)
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		return u.SendError(c, "internal server error", u.EmptyJsonMap(), codeInternalServerError, `internalServerError`)
	}
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeBadRequestError, `badRequest`)
}

// ValidationMessages turns a binding or models.ErrorValidation error into
// messages keyed by snake_case field name. Anything else lands under "form".
func (u *HTTPHelper) ValidationMessages(err error) map[string][]string {
	errorResponse := map[string][]string{}

	var (
		validationErrors validator.ValidationErrors
		fieldErr         models.ErrorValidation
	)
	switch {
	case errors.As(err, &validationErrors):
		errorTranslation := validationErrors.Translate(u.Translator)
		for _, fieldErr := range validationErrors {
			errKey := Underscore(fieldErr.StructField())
			errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[fieldErr.Namespace()])
		}
	case errors.As(err, &fieldErr):
		errorResponse[fieldErr.Field] = []string{fieldErr.Message}
	default:
		errorResponse["form"] = []string{err.Error()}
	}
	return errorResponse
}

// SendValidationError redisplays a rejected form: HTTP 200 with the submitted
// input in data and the per-field messages in code_message.
func (u *HTTPHelper) SendValidationError(c *gin.Context, err error, form interface{}) error {
	c.JSON(http.StatusOK, map[string]interface{}{
		"code":         codeValidationError,
		"code_type":    "validationError",
		"code_message": u.ValidationMessages(err),
		"data":         form,
	})
	return nil
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeUnauthorizedError, `unAuthorized`)
}

func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeForbiddenError, `forbidden`)
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeNotFound, `notFound`)
}

func (u *HTTPHelper) SendTooManyRequests(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), codeTooManyRequests, `tooManyRequests`)
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`)

	return u.SendResponse(res)
}

// Redirect ends a successful form post.
func (u *HTTPHelper) Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// SendResponse ...
// Send response. The HTTP status is the envelope code.
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	resCode := res.Code
	if http.StatusText(resCode) == "" {
		resCode = http.StatusBadRequest
	}

	res.C.JSON(resCode, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}
