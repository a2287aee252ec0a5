package entity

// UploadItem is the progress record of one media item of a batch
type UploadItem struct {
	SourceRef MediaRef
	Filename  string
	Progress  float64 // in [0,1]
	Completed bool
	Err       error // set when the transfer of this item failed
}

// Failed tells whether the item was attempted and did not complete
func (i UploadItem) Failed() bool {
	return i.Err != nil
}
