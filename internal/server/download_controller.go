package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/journalfiles/internal/files"
	"github.com/mxcd/journalfiles/internal/model"
	"github.com/rs/zerolog/log"
)

const notAvailable = "Not available"

// proxyDownloadHandler fetches the document from remote storage and streams
// the bytes to the client.
// GET /api/journals/:id/direct-download/{pdf,docx}   (fallback = false)
// GET /api/submissions/:id/download/{pdf,docx}       (fallback = true)
//
// Returns:
//   - 200 with the document bytes and attachment headers
//   - 400 when the id is malformed
//   - 404 when the record or every file source is missing
//   - 500 when the remote fetch fails and the endpoint has no local fallback
func (s *Server) proxyDownloadHandler(collection model.Collection, kind model.DocumentKind, fallback bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := s.lookupRecord(c, collection)
		if !ok {
			return
		}

		stem := files.SanitizeFilename(record.Title, collection.Singular())
		disposition := files.AttachmentDisposition(stem, kind.Extension())
		logger := log.With().Str("record_id", record.ID).Str("collection", string(collection)).Str("kind", string(kind)).Logger()

		src, err := record.ChooseSource(kind, !fallback)
		if err != nil {
			logger.Warn().Err(err).Msg("download: no usable source")
			if !fallback {
				jsonError(c, http.StatusNotFound, fmt.Sprintf("No %s file found for this %s", kind.Label(), collection.Singular()))
				return
			}
			jsonErrorDetails(c, http.StatusNotFound, kind.Label()+" file not found", s.sourceDetails(record, src, nil))
			return
		}

		var fetchErr error
		if src.HasRemote() {
			downloadURL := files.AttachmentURL(src.RemoteURL)
			fetched, err := s.Fetcher.Fetch(c.Request.Context(), downloadURL)
			if err == nil {
				logger.Info().Int64("bytes", fetched.ContentLength).Msg("download: serving remote file")
				s.streamDocument(c, kind, disposition, bytes.NewReader(fetched.Data), fetched.ContentLength)
				return
			}

			fetchErr = err
			if !fallback {
				logger.Error().Err(err).Msg("download: remote fetch failed")
				s.jsonErrorCause(c, http.StatusInternalServerError, fmt.Sprintf("Server error during %s download", kind.Label()), err)
				return
			}
			logger.Warn().Err(err).Msg("download: remote fetch failed, trying local file")
		}

		if !src.HasLocal() {
			jsonErrorDetails(c, http.StatusNotFound, kind.Label()+" file not found", s.sourceDetails(record, src, nil))
			return
		}

		localPath, err := s.Resolver.Resolve(src.LocalPath)
		if err != nil {
			logger.Warn().Err(err).AnErr("remote_error", fetchErr).Msg("download: local fallback failed")
			jsonErrorDetails(c, http.StatusNotFound, kind.Label()+" file not found", s.sourceDetails(record, src, err))
			return
		}

		s.serveLocalFile(c, kind, disposition, localPath)
	}
}

// redirectDownloadHandler sends the client straight to the storage URL with
// the attachment flag applied. It never fetches and has no local fallback.
// GET /api/journals/:id/download/{pdf,docx}
//
// Returns:
//   - 302 to the storage URL (presigned for s3:// objects)
//   - 404 when the record or its remote URL is missing
//   - 500 when an s3:// URL cannot be presigned
func (s *Server) redirectDownloadHandler(collection model.Collection, kind model.DocumentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := s.lookupRecord(c, collection)
		if !ok {
			return
		}

		src, err := record.ChooseSource(kind, true)
		if err != nil {
			log.Warn().Err(err).Msg("download: no remote url")
			jsonError(c, http.StatusNotFound, fmt.Sprintf("No %s file found for this %s", kind.Label(), collection.Singular()))
			return
		}

		stem := files.SanitizeFilename(record.Title, collection.Singular())
		disposition := files.AttachmentDisposition(stem, kind.Extension())

		target, err := s.browserURL(c, files.AttachmentURL(src.RemoteURL), kind, disposition)
		if err != nil {
			log.Error().Err(err).Str("record_id", record.ID).Msg("download: cannot build redirect target")
			s.jsonErrorCause(c, http.StatusInternalServerError, fmt.Sprintf("Server error during %s download", kind.Label()), err)
			return
		}

		c.Header("Content-Type", kind.ContentType())
		c.Header("Content-Disposition", disposition)
		log.Info().Str("record_id", record.ID).Str("kind", string(kind)).Msg("download: redirecting to storage")
		c.Redirect(http.StatusFound, target)
	}
}

// readContentHandler serves the PDF for in-browser reading: a redirect to the
// untransformed remote URL, else the local copy streamed inline.
// GET /api/submissions/:id/read
func (s *Server) readContentHandler(collection model.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := s.lookupRecord(c, collection)
		if !ok {
			return
		}

		kind := model.DocumentKindPDF
		src := record.Source(kind)
		stem := files.SanitizeFilename(record.Title, collection.Singular())
		disposition := files.InlineDisposition(stem, kind.Extension())

		if src.HasRemote() {
			target, err := s.browserURL(c, src.RemoteURL, kind, disposition)
			if err != nil {
				log.Error().Err(err).Str("record_id", record.ID).Msg("read: cannot build redirect target")
				s.jsonErrorCause(c, http.StatusInternalServerError, "Server error reading file", err)
				return
			}
			c.Redirect(http.StatusFound, target)
			return
		}

		var resolveErr error
		if src.HasLocal() {
			localPath, err := s.Resolver.Resolve(src.LocalPath)
			if err == nil {
				s.serveLocalFile(c, kind, disposition, localPath)
				return
			}
			resolveErr = err
			log.Warn().Err(err).Str("record_id", record.ID).Msg("read: local file not found")
		}

		jsonErrorDetails(c, http.StatusNotFound, "PDF file not found for reading", s.sourceDetails(record, src, resolveErr))
	}
}

// browserURL returns a URL the client can follow. s3:// objects are presigned.
func (s *Server) browserURL(c *gin.Context, rawURL string, kind model.DocumentKind, disposition string) (string, error) {
	if !files.IsS3URL(rawURL) {
		return rawURL, nil
	}
	if s.Presigner == nil {
		return "", errors.New("s3 storage is not configured")
	}
	return s.Presigner.PresignURL(c.Request.Context(), rawURL, kind.ContentType(), disposition)
}

// serveLocalFile streams a resolved filesystem copy.
func (s *Server) serveLocalFile(c *gin.Context, kind model.DocumentKind, disposition, localPath string) {
	f, err := os.Open(localPath)
	if err != nil {
		log.Error().Err(err).Str("path", localPath).Msg("download: failed to open local file")
		s.jsonErrorCause(c, http.StatusInternalServerError, "Error downloading file", err)
		return
	}
	defer f.Close()

	length := int64(-1)
	if info, err := f.Stat(); err == nil {
		length = info.Size()
	}

	log.Info().Str("path", localPath).Int64("bytes", length).Msg("download: serving local file")
	s.streamDocument(c, kind, disposition, f, length)
}

// streamDocument commits the download headers and copies body to the client.
// A negative length omits Content-Length. Write failures happen after the
// headers are sent, so they are only logged.
func (s *Server) streamDocument(c *gin.Context, kind model.DocumentKind, disposition string, body io.Reader, length int64) {
	c.Header("Content-Type", kind.ContentType())
	c.Header("Content-Disposition", disposition)
	if length >= 0 {
		c.Header("Content-Length", strconv.FormatInt(length, 10))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		log.Error().Err(fmt.Errorf("%w: %v", files.ErrStreamWriteFailed, err)).Str("path", c.Request.URL.Path).Msg("download: client stream interrupted")
		c.Abort()
	}
}

// sourceDetails describes which sources were attempted. Probed filesystem
// paths are only included in dev mode.
func (s *Server) sourceDetails(record *model.Record, src model.Source, resolveErr error) gin.H {
	remote, local := notAvailable, notAvailable
	if src.HasRemote() {
		remote = src.RemoteURL
	}
	if src.HasLocal() {
		local = src.LocalPath
	}
	details := gin.H{
		record.Collection.Singular() + "Id": record.ID,
		"remoteUrl":                         remote,
		"localPath":                         local,
	}

	var nf *files.NotFoundError
	if s.Options.DevMode && errors.As(resolveErr, &nf) {
		details["tried"] = nf.Tried
	}
	return details
}
