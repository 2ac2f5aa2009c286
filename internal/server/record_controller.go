package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/journalfiles/internal/model"
)

// fileInfo summarizes where one document kind of a record is stored.
type fileInfo struct {
	HasRemote   bool   `json:"has_remote"`
	HasLocal    bool   `json:"has_local"`
	DownloadURL string `json:"download_url,omitempty"`
}

// fileInfoHandler reports which file sources a record has per document kind.
// GET /api/{journals,submissions}/:id/files
func (s *Server) fileInfoHandler(collection model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := s.lookupRecord(c, collection)
		if !ok {
			return
		}

		// Journal downloads have no local fallback, so only a remote URL makes them servable.
		downloadPath, needsRemote := "/download/", false
		if collection == model.CollectionJournals {
			downloadPath, needsRemote = "/direct-download/", true
		}

		info := gin.H{}
		for _, kind := range []model.DocumentKind{model.DocumentKindPDF, model.DocumentKindDOCX} {
			src := record.Source(kind)
			fi := fileInfo{HasRemote: src.HasRemote(), HasLocal: src.HasLocal()}
			if src.HasRemote() || (!needsRemote && src.HasLocal()) {
				fi.DownloadURL = apiBasePath + "/" + string(collection) + "/" + record.ID + downloadPath + string(kind)
			}
			info[string(kind)] = fi
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     record.ID,
			"title":  record.Title,
			"status": record.Status,
			"files":  info,
		})
	}
}
