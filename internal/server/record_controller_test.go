package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/mxcd/journalfiles/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInfoHandler(t *testing.T) {
	env := newTestEnv(t, false, time.Second)
	env.put(t, &model.Record{
		ID: journalID, Collection: model.CollectionJournals, Title: "Bees", Status: model.RecordStatusPublished,
		PDF:  model.DocumentFile{URL: "https://res.example.com/raw/upload/bees.pdf"},
		DOCX: model.DocumentFile{LocalPath: "uploads/bees.docx"},
	})
	env.put(t, &model.Record{
		ID: submissionID, Collection: model.CollectionSubmissions,
		DOCX: model.DocumentFile{LocalPath: "uploads/sub.docx"},
	})

	type body struct {
		ID     string              `json:"id"`
		Status string              `json:"status"`
		Files  map[string]fileInfo `json:"files"`
	}

	t.Run("journal", func(t *testing.T) {
		rr := env.get("/api/journals/" + journalID + "/files")
		require.Equal(t, http.StatusOK, rr.Code)

		var b body
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
		assert.Equal(t, "published", b.Status)
		assert.Equal(t, fileInfo{HasRemote: true, DownloadURL: "/api/journals/" + journalID + "/direct-download/pdf"}, b.Files["pdf"])
		assert.Equal(t, fileInfo{HasLocal: true}, b.Files["docx"], "journal downloads cannot serve local copies")
	})

	t.Run("submission", func(t *testing.T) {
		rr := env.get("/api/submissions/" + submissionID + "/files")
		require.Equal(t, http.StatusOK, rr.Code)

		var b body
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
		assert.Equal(t, fileInfo{}, b.Files["pdf"])
		assert.Equal(t, fileInfo{HasLocal: true, DownloadURL: "/api/submissions/" + submissionID + "/download/docx"}, b.Files["docx"])
	})
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t, false, time.Second)

	rr := env.get("/api/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = env.get("/api/version")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"version"`)
}
