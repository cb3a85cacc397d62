package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/dpweb/dpweb/pkg/errors"
)

// Write renders r with its status code.
func Write[T any](c *gin.Context, r Response[T]) {
	c.JSON(r.StatusCode(), r)
}

// Ok writes a success envelope.
func Ok[T any](c *gin.Context, result T) {
	Write(c, Success(result))
}

// Error writes an error envelope derived from err.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}
	Write(c, FromError[Empty](err))
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
