package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/najdeno/internal/apperr"
	"github.com/erazemk/najdeno/internal/blob"
	"github.com/erazemk/najdeno/internal/imaging"
)

// Upload is a photo as received from the client.
type Upload struct {
	Filename string
	Body     io.Reader
}

type storedPhoto struct {
	key string
	url string
}

// storePhotos processes and uploads photos concurrently, returning their
// URLs in input order. On failure, photos already uploaded are removed.
func (e *Engine) storePhotos(ctx context.Context, uploads []Upload) ([]storedPhoto, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if e.blobs == nil {
		return nil, apperr.Validation(map[string]string{"photos": "photo uploads are disabled"})
	}

	stored := make([]storedPhoto, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, up := range uploads {
		g.Go(func() error {
			photo, err := imaging.Process(up.Body)
			if err != nil {
				if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
					return apperr.Validation(map[string]string{
						"photos": fmt.Sprintf("%s: %v", up.Filename, err),
					})
				}
				return fmt.Errorf("processing %s: %w", up.Filename, err)
			}

			key := blob.NewKey(e.now())
			url, err := e.blobs.Put(gctx, key, photo.Data, photo.ContentType)
			if err != nil {
				return fmt.Errorf("storing %s: %w", up.Filename, err)
			}
			stored[i] = storedPhoto{key: key, url: url}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.discardPhotos(stored)
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Store(err)
	}
	return stored, nil
}

// discardPhotos deletes uploaded photos whose item was never stored. It
// uses a fresh context, since the request context may already be done.
func (e *Engine) discardPhotos(photos []storedPhoto) {
	for _, p := range photos {
		if p.key == "" {
			continue
		}
		if err := e.blobs.Delete(context.Background(), p.key); err != nil {
			e.log.Warn("failed to remove orphaned photo", "key", p.key, "error", err)
		}
	}
}

func photoURLs(photos []storedPhoto) []string {
	urls := make([]string, len(photos))
	for i, p := range photos {
		urls[i] = p.url
	}
	return urls
}
