package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prajwal-kadam12/ReqGen/errors"
)

// ErrorResponse is the JSON error envelope returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// RespondWithError inspects err: a bridge *errors.Error drives the status
// and structured body; anything else becomes a generic 500.
func RespondWithError(c *gin.Context, err error) {
	if e, ok := errors.As(err); ok {
		c.JSON(e.Kind.HTTPStatus(), ErrorResponse{
			Error: ErrorBody{Kind: e.Kind.String(), Detail: e.Detail},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{Kind: errors.KindInternal.String(), Detail: errors.Truncate(err.Error())},
	})
}

// RespondOK sends a 200 response with the result as its body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
