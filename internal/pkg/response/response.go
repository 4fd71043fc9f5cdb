package response

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/validator"
)

const serverErrorMessage = "Server error"

type Envelope struct {
	Success bool                   `json:"success"`
	Data    any                    `json:"data,omitempty"`
	Message string                 `json:"message,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
}

type ListEnvelope struct {
	Success bool  `json:"success"`
	Count   int   `json:"count"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	Data    any   `json:"data"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func SuccessWithMessage(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data, Message: message})
}

// List writes a paginated envelope. count is the size of this page.
func List(c *gin.Context, data any, count int, total int64, page, limit int) {
	c.JSON(http.StatusOK, ListEnvelope{
		Success: true,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   Pages(total, limit),
		Data:    data,
	})
}

func Pages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, Envelope{Success: false, Code: code, Message: message})
}

func ValidationError(c *gin.Context, message string, fields []validator.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Success: false,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Errors:  fields,
	})
}

// BindError reports a failed ShouldBind call.
func BindError(c *gin.Context, err error) {
	ValidationError(c, "Invalid request body", validator.FromBindError(err))
}

type kind struct {
	sentinel error
	status   int
	code     string
}

var kinds = []kind{
	{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{domain.ErrInvalidState, http.StatusBadRequest, "INVALID_STATE"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
	{domain.ErrPaymentVerificationFailed, http.StatusPaymentRequired, "PAYMENT_VERIFICATION_FAILED"},
}

// Status returns the HTTP status and code for err.
func Status(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// FromError writes err as an error envelope. Errors outside the domain
// taxonomy are attached to the context for the error logger and hidden
// behind an opaque message.
func FromError(c *gin.Context, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		Error(c, status, code, serverErrorMessage)
		return
	}
	Error(c, status, code, Message(err))
}

// Message strips the taxonomy prefix ("not found: ") from a wrapped error.
func Message(err error) string {
	msg := err.Error()
	for _, k := range kinds {
		prefix := k.sentinel.Error() + ": "
		if errors.Is(err, k.sentinel) && strings.HasPrefix(msg, prefix) {
			msg = strings.TrimPrefix(msg, prefix)
			break
		}
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
