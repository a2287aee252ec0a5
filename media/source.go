// Package media finds local media items and loads their contents.
package media

import (
	"context"

	"github.com/m-manu/picstream/entity"
)

// Source gives access to selected media items
type Source interface {
	// OriginalFilename returns the human-meaningful name of the item, if known.
	OriginalFilename(ctx context.Context, ref entity.MediaRef) (string, bool)
	// LoadBytes returns the full contents of the item.
	LoadBytes(ctx context.Context, ref entity.MediaRef) ([]byte, error)
}
