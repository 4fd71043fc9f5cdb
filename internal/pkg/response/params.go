package response

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"nepalstay/internal/pkg/validator"
)

// ParamID parses a positive integer path parameter. On failure it writes a
// validation error and returns false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ValidationError(c, "Invalid "+name, []validator.FieldError{{Field: name, Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// PageParams reads page and limit from the query string. Missing or
// malformed values come back as zero so the repository defaults apply.
func PageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit
}
