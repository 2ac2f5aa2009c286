package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/journalfiles/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// requestLogger logs one line per request with status and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// lookupRecord validates the :id parameter and loads the record. It writes the
// error response itself and returns false when the request cannot continue.
func (s *Server) lookupRecord(c *gin.Context, collection model.Collection) (*model.Record, bool) {
	id := c.Param("id")
	name := capitalize(collection.Singular())

	if err := model.ValidateRecordID(id); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid "+collection.Singular()+" ID")
		return nil, false
	}

	record, err := s.Store.GetRecord(c.Request.Context(), collection, id)
	if errors.Is(err, model.ErrRecordNotFound) {
		log.Debug().Err(err).Str("collection", string(collection)).Msg("lookup: record not found")
		jsonError(c, http.StatusNotFound, name+" not found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("record_id", id).Str("collection", string(collection)).Msg("lookup: failed to retrieve record")
		s.jsonErrorCause(c, http.StatusInternalServerError, "Server error while loading "+collection.Singular(), err)
		return nil, false
	}
	return record, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
