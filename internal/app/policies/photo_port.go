package policies

import (
	"context"
	"io"
)

// PhotoStore uploads property photos and returns their public URL.
type PhotoStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}
