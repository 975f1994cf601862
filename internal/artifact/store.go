// Package artifact archives uploaded recordings.
package artifact

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/and161185/minuteminds/internal/config"
)

// Store persists an uploaded artifact under key and returns a URI for it.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// NewFromConfig creates a Store based on the artifacts config type.
func NewFromConfig(ctx context.Context, cfg config.ArtifactConfig) (Store, error) {
	switch cfg.Type {
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem artifacts require dir to be set")
		}
		return NewFileSystem(cfg.Dir)
	case "s3":
		return NewS3FromConfig(ctx, cfg)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown artifacts type: %s", cfg.Type)
	}
}

// Key builds "<owner>/<id>-<base name>" and strips any directory parts of filename.
func Key(owner, id, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return owner + "/" + id + "-" + base
}
