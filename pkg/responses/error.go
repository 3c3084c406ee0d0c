package responses

import (
	"filevault/internal/apperrors"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Data interface{} `json:"error,omitempty"`
}

func Error(c *gin.Context, status int, err error, message string) {
	errorRes := map[string]interface{}{
		"message": message,
		"error":   err.Error(),
	}

	c.JSON(status, ErrorResponse{Data: errorRes})
}

// FromError translates a typed service error into a transport response.
func FromError(c *gin.Context, err error) {
	Error(c, apperrors.HTTPStatus(err), err, err.Error())
}
