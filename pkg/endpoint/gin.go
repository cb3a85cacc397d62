package endpoint

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/response"
	"github.com/dpweb/dpweb/pkg/validator"
)

// HandlerFunc serves one operation. It receives the decoded query and body and
// must produce an envelope carrying the descriptor's result type.
type HandlerFunc[Q, B, R any] func(c *gin.Context, query Q, body B) response.Response[R]

// Register binds h to the descriptor's method and partial path on r. The
// middleware runs before decoding, so authentication failures short-circuit
// ahead of input validation.
func Register[Q, B, R any](r gin.IRoutes, d Descriptor[Q, B, R], h HandlerFunc[Q, B, R], middleware ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	handlers = append(handlers, func(c *gin.Context) {
		query, body, err := Decode[Q, B](c)
		if err != nil {
			response.Write(c, response.FromError[R](err))
			return
		}
		response.Write(c, h(c, query, body))
	})
	r.Handle(d.Method(), d.PartialPath(), handlers...)
}

// Decode binds the path parameters and query string into Q and the JSON body into
// B, then runs struct validation. Empty shapes are skipped. Failures are
// reported as InvalidInput.
func Decode[Q, B any](c *gin.Context) (Q, B, error) {
	var (
		query Q
		body  B
	)

	if !isEmpty(&query) {
		if len(c.Params) > 0 {
			if err := c.ShouldBindUri(&query); err != nil {
				return query, body, appErrors.NewBadRequest(err.Error())
			}
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			return query, body, appErrors.NewBadRequest(err.Error())
		}
		if err := validator.ValidateStruct(query); err != nil {
			return query, body, appErrors.NewBadRequest(err.Error())
		}
	}

	if !isEmpty(&body) {
		if err := c.ShouldBindJSON(&body); err != nil {
			return query, body, appErrors.NewBadRequest(err.Error())
		}
		if err := validator.ValidateStruct(body); err != nil {
			return query, body, appErrors.NewBadRequest(err.Error())
		}
	}

	return query, body, nil
}

func isEmpty(v any) bool {
	_, ok := v.(*Empty)
	return ok
}
