package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SuccessResponse is returned by endpoints without a payload
type SuccessResponse struct {
	Message string `json:"message"`
}

type statusMapping struct {
	err    error
	status int
}

var errorStatuses = []statusMapping{
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrRequestNotFound, http.StatusNotFound},
	{domain.ErrUserInactive, http.StatusForbidden},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrCannotTargetSelf, http.StatusBadRequest},
	{domain.ErrContactTaken, http.StatusConflict},
	{domain.ErrRequestNotPending, http.StatusConflict},
	{domain.ErrRequestAlreadyExists, http.StatusConflict},
	{domain.ErrAlreadyConnected, http.StatusConflict},
	{domain.ErrConnectionClosed, http.StatusConflict},
	{domain.ErrNotConnected, http.StatusForbidden},
}

// respondError maps use case errors to HTTP statuses. Unknown errors are
// logged and reported as 500 without detail.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "invalid request",
			Fields: map[string]string{verr.Field: verr.Reason},
		})
		return
	}

	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			c.JSON(m.status, ErrorResponse{Error: m.err.Error()})
			return
		}
	}

	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		logFrom(c).Error("store failure", zap.String("op", storeErr.Op), zap.Error(storeErr.Err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}

	logFrom(c).Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondBindError renders binding failures, listing validator errors per field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonFieldName(fe)] = describe(fe)
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Fields: fields})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	// snake_case the struct field for the client
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// currentUserID reads the id set by the auth middleware
func currentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return 0, false
	}
	return id, true
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return 0, false
	}
	return id, true
}

func logFrom(c *gin.Context) *zap.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}
