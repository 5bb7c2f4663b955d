package ui

import (
	"log"
	"net/http"

	"csvdash/internal/errors"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	errors.CodeInvalidInput:   http.StatusBadRequest,
	errors.CodeParseError:     http.StatusBadRequest,
	errors.CodeUnknownColumn:  http.StatusBadRequest,
	errors.CodeMissingField:   http.StatusBadRequest,
	errors.CodeTypeError:      http.StatusUnprocessableEntity,
	errors.CodeEmptyColumn:    http.StatusUnprocessableEntity,
	errors.CodeNotFound:       http.StatusNotFound,
	errors.CodeDeliveryError:  http.StatusBadGateway,
	errors.CodeExternalFailed: http.StatusBadGateway,
}

// respondError writes err as {"error","code"}. The session is left as it was.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[Dashboard] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}
