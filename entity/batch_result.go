package entity

// BatchResult is the outcome, or the in-progress state, of an upload batch
type BatchResult struct {
	Attempted int
	Succeeded int
	Items     []UploadItem
	Progress  float64 // aggregate over Items
}

// Failed returns the number of attempted items that did not complete
func (r BatchResult) Failed() int {
	return r.Attempted - r.Succeeded
}

// Clone returns a copy whose Items slice is not shared with r
func (r BatchResult) Clone() BatchResult {
	items := make([]UploadItem, len(r.Items))
	copy(items, r.Items)
	r.Items = items
	return r
}
