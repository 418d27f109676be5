package params

import (
	"fmt"
	"strconv"

	"cineplex/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

// UintParam reads a positive integer id from the named path parameter.
func UintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return uint(id), nil
}
