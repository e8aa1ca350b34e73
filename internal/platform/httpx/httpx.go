// Package httpx holds the small gin helpers shared by every feature handler.
package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/observability"
)

const ctxExposeErrorsKey = "expose_errors"

// ExposeErrors controls whether internal error detail reaches the client.
// Only enabled in dev mode.
func ExposeErrors(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxExposeErrorsKey, expose)
		c.Next()
	}
}

// WriteError logs err and writes the JSON error envelope with the mapped status.
func WriteError(c *gin.Context, err error) {
	status := apierr.ToHTTPStatus(err)
	entry := observability.Entry(c).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("handler failed")
	} else {
		entry.Debug("request rejected")
	}
	c.JSON(status, apierr.BodyFromErr(err, c.GetBool(ctxExposeErrorsKey)))
}

// BindError answers a request whose body or form could not be bound.
func BindError(c *gin.Context, err error) {
	observability.Entry(c).WithError(err).Debug("bind failed")
	c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.ErrInvalid(name + " must be a positive integer")
	}
	return id, nil
}
