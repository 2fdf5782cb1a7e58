package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/pkg/i18n"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	msgInternal = "internal server error"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  string            `json:"status"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type Page struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Code: http.StatusOK, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: StatusSuccess, Code: http.StatusCreated, Message: message, Data: data})
}

// Error writes err with the status of its apperror kind. Unclassified errors
// are logged and hidden behind a generic message. Messages are localized from
// the Accept-Language header and fall back to English.
func Error(c *gin.Context, log logger.ZapLogger, err error) {
	status := apperror.HTTPStatus(err)
	body := Envelope{Status: StatusError, Code: status}
	tr := i18n.For(c.GetHeader("Accept-Language"))

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body.Message = localizedMessage(tr, appErr)
		body.Errors = localizedFields(tr, appErr.Fields)
	} else {
		body.Message = tr.Message(msgInternal, nil, msgInternal)
	}

	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, body)
}

func localizedMessage(tr *i18n.Translator, e *apperror.Error) string {
	if e.MessageID != "" {
		data := make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			data[k] = v
		}
		if r, ok := data["Resource"].(string); ok {
			data["Resource"] = tr.Resource(r)
		}
		return tr.Message(e.MessageID, data, e.Message)
	}
	if e.Message == "" {
		kind := e.Kind.String()
		return tr.Message("kind."+kind, nil, kind)
	}
	return tr.Message(e.Message, nil, e.Message)
}

func localizedFields(tr *i18n.Translator, fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return fields
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = tr.Message(v, nil, v)
	}
	return out
}

// BindJSON decodes the body into dst and runs validator tags on it. On failure
// the error response is already written and false is returned.
func BindJSON(c *gin.Context, log logger.ZapLogger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, log, ValidationError(err))
		return false
	}
	return true
}

func BindQuery(c *gin.Context, log logger.ZapLogger, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		Error(c, log, ValidationError(err))
		return false
	}
	return true
}

// ValidationError converts binding and validator errors into a field map.
func ValidationError(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("invalid request body", nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[toSnake(fe.Field())] = fieldMessage(fe)
	}
	return apperror.Validation("validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid e-mail address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "eqfield":
		return "must match " + toSnake(fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
