// Package storage saves finished images to a local directory or to an S3
// compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/haivivi/midjourney-go/pkg/midjourney"
)

// Store writes named objects.
//
// Names are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes r under name, replacing any existing object, and returns
	// the location of the stored object (a file path or an s3:// URL).
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)

	// Exists reports whether name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// Location returns where name is or would be stored.
	Location(name string) string
}

// Open returns the store described by spec: "s3://bucket/prefix" for S3,
// anything else is a local directory.
func Open(ctx context.Context, spec string, s3cfg S3Config) (Store, error) {
	if spec == "" {
		return nil, errors.New("storage: empty location")
	}
	rest, ok := strings.CutPrefix(spec, "s3://")
	if !ok {
		return NewLocal(spec)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("storage: %q has no bucket", spec)
	}
	client, err := s3cfg.client(ctx)
	if err != nil {
		return nil, err
	}
	return NewS3(client, bucket, strings.Trim(prefix, "/")), nil
}

// ImageName returns the object name of a finished outcome's image:
// "<message-id>_<hash><ext>".
func ImageName(o *midjourney.Outcome) string {
	ext := path.Ext(strings.SplitN(o.URI, "?", 2)[0])
	if ext == "" {
		ext = ".png"
	}
	return o.MessageID + "_" + o.Hash + ext
}

// Save downloads the image of a finished outcome and writes it to store.
// An image that is already stored is not downloaded again.
func Save(ctx context.Context, store Store, client *http.Client, o *midjourney.Outcome) (string, error) {
	if !o.Finished() || o.URI == "" {
		return "", midjourney.ErrNotFinished
	}
	if client == nil {
		client = http.DefaultClient
	}

	name := ImageName(o)
	ok, err := store.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if ok {
		return store.Location(name), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URI, nil)
	if err != nil {
		return "", fmt.Errorf("storage: create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: download %s: %w", o.URI, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storage: download %s: status %d", o.URI, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return store.Put(ctx, name, resp.Body, contentType)
}
