package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/artifact"
	"github.com/and161185/minuteminds/internal/capability"
	"github.com/and161185/minuteminds/internal/denoise"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
	"github.com/and161185/minuteminds/internal/transcribe"
)

// Upload is one audio artifact received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
	Denoise  bool
}

// PipelineService turns uploaded audio into stored transcriptions.
type PipelineService interface {
	// Transcribe archives, optionally denoises and transcribes the upload, then stores the result.
	Transcribe(ctx context.Context, owner uuid.UUID, up Upload) (*model.Transcription, error)
}

type PipelineServiceImpl struct {
	repo        repository.TranscriptionRepository
	artifacts   artifact.Store
	denoiser    denoise.Denoiser
	transcriber *capability.Lazy[transcribe.Backend]
	rec         *Recorder
	log         *zap.Logger
	tmpDir      string
	now         func() time.Time
}

// NewPipelineService wires the pipeline. denoiser may be nil, which makes denoise requests a no-op.
// Per-request scratch directories are created under tmpDir, or the OS temp dir when it is empty.
func NewPipelineService(
	repo repository.TranscriptionRepository,
	artifacts artifact.Store,
	denoiser denoise.Denoiser,
	transcriber *capability.Lazy[transcribe.Backend],
	rec *Recorder,
	log *zap.Logger,
	tmpDir string,
) *PipelineServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &PipelineServiceImpl{
		repo:        repo,
		artifacts:   artifacts,
		denoiser:    denoiser,
		transcriber: transcriber,
		rec:         rec,
		log:         log,
		tmpDir:      tmpDir,
		now:         time.Now,
	}
}

// Transcribe runs the pipeline synchronously. Only denoising degrades silently;
// every other failure aborts the request and nothing is stored.
func (s *PipelineServiceImpl) Transcribe(ctx context.Context, owner uuid.UUID, up Upload) (*model.Transcription, error) {
	filename := strings.TrimSpace(up.Filename)
	if filename == "" || up.Body == nil {
		return nil, fmt.Errorf("%w: no file selected", errs.ErrValidation)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(s.tmpDir, "mm-"+id.String())
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "input"+safeExt(filename))
	size, err := spool(audioPath, up.Body)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", errs.ErrValidation)
	}

	uri, err := s.archive(ctx, artifact.Key(owner.String(), id.String(), filename), audioPath)
	if err != nil {
		return nil, err
	}

	denoised := false
	if up.Denoise && s.denoiser != nil {
		clean, err := s.denoiser.Denoise(ctx, audioPath, workDir)
		if err != nil {
			s.log.Warn("denoise failed, using original audio", zap.String("filename", filename), zap.Error(err))
		} else {
			audioPath, denoised = clean, true
		}
	}

	backend, err := s.transcriber.Get(ctx)
	if err != nil {
		return nil, err
	}
	started := s.now()
	res, err := backend.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	segments := res.Segments
	if segments == nil {
		segments = []model.Segment{}
	}

	t := &model.Transcription{
		ID:          id,
		UserID:      owner,
		Filename:    filename,
		Text:        res.Text,
		Segments:    segments,
		ArtifactURI: uri,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("store transcription: %w", err)
	}

	s.rec.Log(ctx, ActionTranscriptionCreated, &owner, map[string]any{
		"transcription_id": id.String(),
		"filename":         filename,
		"denoised":         denoised,
		"bytes":            size,
	})
	s.rec.Metric(ctx, "transcription_count", 1, &owner)
	s.rec.Metric(ctx, "transcription_seconds", s.now().Sub(started).Seconds(), &owner)
	return t, nil
}

func (s *PipelineServiceImpl) archive(ctx context.Context, key, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	uri, err := s.artifacts.Put(ctx, key, f)
	if err != nil {
		return "", fmt.Errorf("archive upload: %w", err)
	}
	return uri, nil
}

// spool copies the upload to path and returns the number of bytes written.
func spool(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("read upload: %w", err)
	}
	return n, nil
}

// safeExt keeps short alphanumeric extensions so ffmpeg and the backends can sniff the container.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
