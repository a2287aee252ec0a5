package bytesutil

import (
	"strings"
	"testing"
)

func FuzzDecimalFormat(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(1000))
	f.Add(int64(2140))
	f.Add(int64(-1))
	f.Fuzz(func(t *testing.T, size int64) {
		DecimalFormat(size)
	})
}

func FuzzFileSizeFormat(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(999))
	f.Add(int64(999999))
	f.Add(int64(1 << 40))
	f.Add(int64(-1))
	f.Fuzz(func(t *testing.T, size int64) {
		s := FileSizeFormat(size)
		if size >= 0 && s == "" {
			t.Errorf("FileSizeFormat(%d) is empty", size)
		}
		if strings.HasPrefix(s, "1000 ") || strings.HasPrefix(s, "1000.0 ") {
			t.Errorf("FileSizeFormat(%d) = %q, should have moved to the next unit", size, s)
		}
	})
}
