package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/minuteminds/internal/artifact"
	"github.com/and161185/minuteminds/internal/capability"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
	"github.com/and161185/minuteminds/internal/transcribe"
)

type backendFunc func(ctx context.Context, path string) (transcribe.Result, error)

func (f backendFunc) Transcribe(ctx context.Context, path string) (transcribe.Result, error) {
	return f(ctx, path)
}

type fakeDenoiser struct {
	err    error
	called bool
}

func (d *fakeDenoiser) Denoise(_ context.Context, audioPath, tmpDir string) (string, error) {
	d.called = true
	if d.err != nil {
		return "", d.err
	}
	out := filepath.Join(tmpDir, "clean.wav")
	if err := os.WriteFile(out, []byte("clean"), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

type pipelineEnv struct {
	svc       *PipelineServiceImpl
	store     repository.Store
	artifacts *artifact.Memory
	seenPath  string
	seenBody  string
}

func newPipeline(t *testing.T, d *fakeDenoiser, backend *capability.Lazy[transcribe.Backend]) *pipelineEnv {
	t.Helper()
	env := &pipelineEnv{store: newStore(), artifacts: artifact.NewMemory()}
	if backend == nil {
		backend = capability.Ready[transcribe.Backend]("transcriber", backendFunc(func(_ context.Context, path string) (transcribe.Result, error) {
			env.seenPath = path
			b, err := os.ReadFile(path)
			if err != nil {
				return transcribe.Result{}, err
			}
			env.seenBody = string(b)
			return transcribe.Result{
				Text:     "Hello team. Let's begin.",
				Segments: []model.Segment{{Start: 0, End: 1.5, Text: "Hello team."}, {Start: 1.5, End: 3, Text: "Let's begin."}},
			}, nil
		}))
	}
	env.svc = NewPipelineService(env.store.Transcriptions, env.artifacts, nil, backend, newRecorder(t, env.store), zaptest.NewLogger(t), t.TempDir())
	if d != nil {
		env.svc.denoiser = d
	}
	return env
}

func TestPipeline_TranscribeStoresRecord(t *testing.T) {
	t.Parallel()
	env := newPipeline(t, nil, nil)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	tr, err := env.svc.Transcribe(ctx, owner, Upload{Filename: "standup.mp3", Body: strings.NewReader("RIFFDATA")})
	require.NoError(t, err)
	require.Equal(t, owner, tr.UserID)
	require.Equal(t, "standup.mp3", tr.Filename)
	require.Equal(t, "Hello team. Let's begin.", tr.Text)
	require.Len(t, tr.Segments, 2)
	require.Nil(t, tr.Summary)
	require.Nil(t, tr.KeyItems)
	require.Equal(t, ".mp3", filepath.Ext(env.seenPath))
	require.Equal(t, "RIFFDATA", env.seenBody)

	key := artifact.Key(owner.String(), tr.ID.String(), "standup.mp3")
	require.Equal(t, "mem://"+key, tr.ArtifactURI)
	blob, ok := env.artifacts.Get(key)
	require.True(t, ok)
	require.Equal(t, "RIFFDATA", string(blob))

	stored, err := env.store.Transcriptions.Get(ctx, owner, tr.ID)
	require.NoError(t, err)
	require.Equal(t, tr.Text, stored.Text)
	require.Contains(t, actions(t, env.store), ActionTranscriptionCreated)

	_, statErr := os.Stat(filepath.Dir(env.seenPath))
	require.True(t, os.IsNotExist(statErr), "work dir is removed")
}

func TestPipeline_Validation(t *testing.T) {
	t.Parallel()
	env := newPipeline(t, nil, nil)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	_, err := env.svc.Transcribe(ctx, owner, Upload{Filename: "", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = env.svc.Transcribe(ctx, owner, Upload{Filename: "a.wav"})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = env.svc.Transcribe(ctx, owner, Upload{Filename: "a.wav", Body: strings.NewReader("")})
	require.ErrorIs(t, err, errs.ErrValidation)

	list, err := env.store.Transcriptions.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPipeline_DenoiseUsesCleanAudio(t *testing.T) {
	t.Parallel()
	d := &fakeDenoiser{}
	env := newPipeline(t, d, nil)

	_, err := env.svc.Transcribe(context.Background(), uuid.Must(uuid.NewV4()), Upload{Filename: "a.wav", Body: strings.NewReader("noisy"), Denoise: true})
	require.NoError(t, err)
	require.True(t, d.called)
	require.Equal(t, "clean", env.seenBody)
}

func TestPipeline_DenoiseFailureFallsBack(t *testing.T) {
	t.Parallel()
	d := &fakeDenoiser{err: errors.New("ffmpeg: not found")}
	env := newPipeline(t, d, nil)

	_, err := env.svc.Transcribe(context.Background(), uuid.Must(uuid.NewV4()), Upload{Filename: "a.wav", Body: strings.NewReader("noisy"), Denoise: true})
	require.NoError(t, err)
	require.True(t, d.called)
	require.Equal(t, "noisy", env.seenBody)
}

func TestPipeline_DenoiseNotRequested(t *testing.T) {
	t.Parallel()
	d := &fakeDenoiser{}
	env := newPipeline(t, d, nil)

	_, err := env.svc.Transcribe(context.Background(), uuid.Must(uuid.NewV4()), Upload{Filename: "a.wav", Body: strings.NewReader("noisy")})
	require.NoError(t, err)
	require.False(t, d.called)
}

func TestPipeline_TranscriberUnavailable(t *testing.T) {
	t.Parallel()
	env := newPipeline(t, nil, capability.Disabled[transcribe.Backend]("transcriber", "no api key"))
	owner := uuid.Must(uuid.NewV4())

	_, err := env.svc.Transcribe(context.Background(), owner, Upload{Filename: "a.wav", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, capability.ErrUnavailable)

	list, err := env.store.Transcriptions.ListByUser(context.Background(), owner)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPipeline_TranscriptionFailure(t *testing.T) {
	t.Parallel()
	failing := capability.Ready[transcribe.Backend]("transcriber", backendFunc(func(context.Context, string) (transcribe.Result, error) {
		return transcribe.Result{}, errors.New("upstream 500")
	}))
	env := newPipeline(t, nil, failing)

	_, err := env.svc.Transcribe(context.Background(), uuid.Must(uuid.NewV4()), Upload{Filename: "a.wav", Body: strings.NewReader("x")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "transcription failed: upstream 500")
	require.NotErrorIs(t, err, capability.ErrUnavailable)
}

func TestSafeExt(t *testing.T) {
	t.Parallel()
	require.Equal(t, ".wav", safeExt("x.WAV"))
	require.Equal(t, ".m4a", safeExt("call.m4a"))
	require.Equal(t, "", safeExt("noext"))
	require.Equal(t, "", safeExt("evil.w/v"))
	require.Equal(t, "", safeExt("name.toolongext"))
}

func TestPipeline_ScratchUnderTmpDirIsRemoved(t *testing.T) {
	t.Parallel()
	scratch := t.TempDir()
	var seen string
	backend := capability.Ready[transcribe.Backend]("transcriber", backendFunc(func(_ context.Context, path string) (transcribe.Result, error) {
		seen = path
		return transcribe.Result{Text: "ok"}, nil
	}))
	st := newStore()
	svc := NewPipelineService(st.Transcriptions, artifact.NewMemory(), nil, backend, nil, zaptest.NewLogger(t), scratch)

	_, err := svc.Transcribe(context.Background(), uuid.Must(uuid.NewV4()), Upload{Filename: "a.wav", Body: strings.NewReader("RIFF")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(seen, scratch+string(filepath.Separator)), seen)

	left, err := os.ReadDir(scratch)
	require.NoError(t, err)
	require.Empty(t, left)
}
