package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/media"
	"github.com/m-manu/picstream/remote"
)

const (
	StageLoad  = "load"
	StageWrite = "write"
)

// UploadFileAction is a TransferAction that loads the bytes of one media item
// and writes them to TargetDir/Filename
type UploadFileAction struct {
	Index     int
	Source    media.Source
	Ref       entity.MediaRef
	TargetDir string
	Filename  string
}

func (a UploadFileAction) destinationPath() string {
	return remote.JoinPath(a.TargetDir, a.Filename)
}

// Perform loads the item, then writes it. Failures come back as *entity.ItemTransferError.
func (a UploadFileAction) Perform(ctx context.Context, session remote.Session, onProgress remote.ProgressFunc) error {
	data, err := a.Source.LoadBytes(ctx, a.Ref)
	if err != nil {
		return a.failed(StageLoad, err)
	}
	if err := session.WriteFile(ctx, data, a.destinationPath(), onProgress); err != nil {
		return a.failed(StageWrite, err)
	}
	return nil
}

func (a UploadFileAction) failed(stage string, cause error) error {
	return &entity.ItemTransferError{Index: a.Index, Filename: a.Filename, Stage: stage, Cause: cause}
}

// Uniqueness is keyed on the destination, case-insensitively: SMB shares don't tell "a.jpg" from "A.JPG"
func (a UploadFileAction) Uniqueness() string {
	return "put" + keySeparator + strings.ToLower(a.destinationPath())
}

func (a UploadFileAction) String() string {
	return fmt.Sprintf(`upload "%s" to "%s"`, a.Ref.Locator, a.destinationPath())
}
