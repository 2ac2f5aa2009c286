package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/journalfiles/internal/files"
	"github.com/mxcd/journalfiles/internal/model"
	"github.com/mxcd/journalfiles/internal/store"
	"github.com/rs/zerolog/log"
)

const apiBasePath = "/api"

// Presigner turns an object-storage URL into a short-lived browser-usable URL.
type Presigner interface {
	PresignURL(ctx context.Context, rawURL, contentType, disposition string) (string, error)
}

type ServerOptions struct {
	DevMode  bool
	Port     int
	Store    store.RecordStore
	Fetcher  files.Fetcher
	Resolver *files.LocalResolver
	// Presigner is optional; without it s3:// URLs cannot be redirected to.
	Presigner Presigner
}

type Server struct {
	Options    *ServerOptions
	Engine     *gin.Engine
	HttpServer *http.Server
	API        *gin.RouterGroup
	Store      store.RecordStore
	Fetcher    files.Fetcher
	Resolver   *files.LocalResolver
	Presigner  Presigner
}

func NewServer(options *ServerOptions) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("server options cannot be nil")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("server options Store cannot be nil")
	}
	if options.Fetcher == nil {
		return nil, fmt.Errorf("server options Fetcher cannot be nil")
	}
	if options.Resolver == nil {
		return nil, fmt.Errorf("server options Resolver cannot be nil")
	}

	server := &Server{
		Options:   options,
		Store:     options.Store,
		Fetcher:   options.Fetcher,
		Resolver:  options.Resolver,
		Presigner: options.Presigner,
	}

	if !server.Options.DevMode {
		log.Info().Msg("Running Gin in production mode")
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Info().Msg("Running Gin in development mode")
	}

	engine := gin.New()
	server.Engine = engine
	server.Engine.Use(gin.Recovery())
	server.Engine.Use(requestLogger())

	server.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", options.Port),
		Handler: engine,
	}

	return server, nil
}

func (s *Server) RegisterRoutes() error {
	s.registerHealthRoute()
	s.registerVersionRoute()

	s.API = s.Engine.Group(apiBasePath)

	journals := s.API.Group("/journals/:id")
	submissions := s.API.Group("/submissions/:id")

	for _, kind := range []model.DocumentKind{model.DocumentKindPDF, model.DocumentKindDOCX} {
		// Journal downloads: redirect to storage, or proxy the bytes without local fallback.
		journals.GET("/download/"+string(kind), s.redirectDownloadHandler(model.CollectionJournals, kind))
		journals.GET("/direct-download/"+string(kind), s.proxyDownloadHandler(model.CollectionJournals, kind, false))

		// Submission downloads proxy the bytes and fall back to the local copy.
		submissions.GET("/download/"+string(kind), s.proxyDownloadHandler(model.CollectionSubmissions, kind, true))
	}

	submissions.GET("/read", s.readContentHandler(model.CollectionSubmissions))

	journals.GET("/files", s.fileInfoHandler(model.CollectionJournals))
	submissions.GET("/files", s.fileInfoHandler(model.CollectionSubmissions))
	return nil
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.HttpServer.Addr).Msg("server listening")
	if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.HttpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
}
