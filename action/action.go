// Package action holds the unit of work performed for each item of an upload batch.
package action

import (
	"context"
	"fmt"

	"github.com/m-manu/picstream/remote"
)

// TransferAction is implemented by any action that moves one item to a remote share
type TransferAction interface {
	fmt.Stringer
	// Perform must perform the actual transfer over session
	Perform(ctx context.Context, session remote.Session, onProgress remote.ProgressFunc) error
	// Uniqueness should define a string that's unique with an action
	Uniqueness() string
}

const keySeparator = "\u0001"
