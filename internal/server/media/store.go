// Package media stores avatar and cover images in object storage and hands
// back the public URL under which each object is served.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrForeignURL is returned by Delete for URLs this store did not issue.
var ErrForeignURL = errors.New("url does not belong to this store")

type Store interface {
	// Upload stores body under folder and returns its public URL.
	Upload(ctx context.Context, folder, name, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object behind url.
	Delete(ctx context.Context, url string) error
}

// objectKey builds a random key that keeps the file extension of name.
func objectKey(folder, name string, at time.Time) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("%s/%d/%02d/%s%s", strings.Trim(folder, "/"), at.Year(), at.Month(), uuid.New(), ext)
}

// publicURL joins base and key with exactly one slash.
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// keyFromURL reverses publicURL. It returns "" when url is not under base.
func keyFromURL(base, url string) string {
	prefix := strings.TrimRight(base, "/") + "/"
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return ""
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key
}
