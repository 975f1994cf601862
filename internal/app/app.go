package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/artifact"
	"github.com/and161185/minuteminds/internal/capability"
	"github.com/and161185/minuteminds/internal/config"
	"github.com/and161185/minuteminds/internal/denoise"
	"github.com/and161185/minuteminds/internal/nlp"
	grpcserver "github.com/and161185/minuteminds/internal/server/grpc"
	"github.com/and161185/minuteminds/internal/server/httpapi"
	"github.com/and161185/minuteminds/internal/service"
	"github.com/and161185/minuteminds/internal/summarize"
	"github.com/and161185/minuteminds/internal/transcribe"
	"github.com/and161185/minuteminds/internal/translate"
)

const shutdownTimeout = 10 * time.Second

// App is a configured server process.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	storage *Storage
	server  *http.Server
	ops     *grpcserver.Ops
}

// New opens storage, builds the capability handles and services, and prepares
// the listeners. Nothing is served until Run.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	storage, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	artifacts, err := artifact.NewFromConfig(ctx, cfg.Artifacts)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	svc := NewServices(cfg, storage, artifacts, log)
	a := &App{
		cfg:     cfg,
		log:     log,
		storage: storage,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpapi.NewRouter(svc, log, cfg.MaxUploadBytes),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	if cfg.GRPCHealthAddr != "" {
		a.ops = grpcserver.NewOps(log, cfg.Dev)
	}
	return a, nil
}

// NewServices builds the service layer. ML capabilities are lazy: a backend that
// cannot be initialized makes only its own endpoints answer 503.
func NewServices(cfg *config.Config, storage *Storage, artifacts artifact.Store, log *zap.Logger) httpapi.Services {
	st := storage.Store
	rec := service.NewRecorder(st.Audit, log)

	transcriber := capability.NewLazy("transcriber", func(context.Context) (transcribe.Backend, error) {
		return transcribe.NewFromConfig(cfg.Transcriber)
	})

	var summarizer *capability.Lazy[summarize.Summarizer]
	if cfg.Summarizer.URL == "" {
		summarizer = capability.Disabled[summarize.Summarizer]("summarizer", "no summarizer url configured")
	} else {
		summarizer = capability.Ready[summarize.Summarizer]("summarizer",
			summarize.NewHuggingFace(cfg.Summarizer.URL, cfg.Summarizer.Token, cfg.Summarizer.Timeout))
	}

	var analyzer *capability.Lazy[nlp.Analyzer]
	if cfg.NLP.Enabled {
		analyzer = capability.NewLazy("nlp", func(context.Context) (nlp.Analyzer, error) {
			return nlp.NewProse()
		})
	} else {
		analyzer = capability.Disabled[nlp.Analyzer]("nlp", "disabled in config")
	}

	tr := translate.New(cfg.Translate.URL, cfg.Translate.APIKey, cfg.Translate.Timeout)
	return httpapi.Services{
		Auth:        service.NewAuthService(st.Users, []byte(cfg.JWTSecret), cfg.TokenTTL, storage.Limiter, rec),
		Pipeline:    service.NewPipelineService(st.Transcriptions, artifacts, denoise.NewFFmpeg(cfg.Denoise.FFmpegPath, cfg.Denoise.Filter), transcriber, rec, log, cfg.WorkDir),
		Enrich:      service.NewEnrichService(st.Transcriptions, summarizer, analyzer, rec, log),
		Transcripts: service.NewTranscriptService(st.Transcriptions, rec),
		Admin:       service.NewAdminService(st, rec),
		Translate:   service.NewTranslateService(tr, rec),
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.server.Handler }

// Run serves until ctx is canceled or a listener fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.storage.Close()

	lis, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	errCh := make(chan error, 2)
	go func() {
		a.log.Info("listening", zap.String("addr", lis.Addr().String()))
		if err := a.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.ops != nil {
		opsLis, err := net.Listen("tcp", a.cfg.GRPCHealthAddr)
		if err != nil {
			_ = a.server.Close()
			return fmt.Errorf("listen %s: %w", a.cfg.GRPCHealthAddr, err)
		}
		go func() {
			if err := a.ops.Serve(opsLis); err != nil {
				errCh <- fmt.Errorf("ops server: %w", err)
			}
		}()
		a.ops.SetServing(true)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		a.log.Error("server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if a.ops != nil {
		a.ops.SetServing(false)
		a.ops.Stop(shutdownCtx)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info("shutdown complete")
	return runErr
}
