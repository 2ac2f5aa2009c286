package server

import (
	"github.com/gin-gonic/gin"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
	Details gin.H  `json:"details,omitempty"`
	Error   string `json:"error,omitempty"`
}

func jsonError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}

func jsonErrorDetails(c *gin.Context, status int, message string, details gin.H) {
	c.AbortWithStatusJSON(status, errorResponse{Message: message, Details: details})
}

// jsonErrorCause adds the underlying error text in dev mode only.
func (s *Server) jsonErrorCause(c *gin.Context, status int, message string, cause error) {
	resp := errorResponse{Message: message}
	if s.Options.DevMode && cause != nil {
		resp.Error = cause.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}
