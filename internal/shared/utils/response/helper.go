package response

import (
	"cineplex/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes err using the status code of its kind. The error code is
// exposed so clients can tell a missing booking from one in the wrong state.
func RespondError(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	_ = c.Error(err)
	RespondJSON(c, "error", code, err.Error(), nil, gin.H{
		"code": apperr.CodeOf(err),
		"kind": apperr.KindOf(err),
	})
}
