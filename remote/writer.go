package remote

import (
	"context"
	"io"
)

const writeChunkSize = 256 * 1024

// writeWithProgress writes data in chunks, reporting each new whole percentage.
func writeWithProgress(ctx context.Context, w io.Writer, data []byte, onProgress ProgressFunc) error {
	total := int64(len(data))
	if total == 0 {
		if onProgress != nil && !onProgress(100) {
			return ErrWriteAborted
		}
		return nil
	}
	lastPercent := -1
	var written int64
	for written < total {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(written+writeChunkSize, total)
		n, err := w.Write(data[written:end])
		written += int64(n)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		percent := int(written * 100 / total)
		if percent != lastPercent {
			lastPercent = percent
			if onProgress != nil && !onProgress(percent) {
				return ErrWriteAborted
			}
		}
	}
	return nil
}
