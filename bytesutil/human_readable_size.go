package bytesutil

import "fmt"

const (
	KILO int64 = 1000        // 1000 power 1 (10 power 3)
	MEGA       = KILO * KILO // 1000 power 2 (10 power 6)
	GIGA       = MEGA * KILO // 1000 power 3 (10 power 9)
	TERA       = GIGA * KILO // 1000 power 4 (10 power 12)
)

// DecimalFormat formats a byte count with the largest fitting decimal unit, up to TB
func DecimalFormat(size int64) string {
	if size < 0 {
		return ""
	} else if size < KILO {
		return fmt.Sprintf("%d B", size)
	} else if size < MEGA {
		return fmt.Sprintf("%.2f KB", float64(size)/float64(KILO))
	} else if size < GIGA {
		return fmt.Sprintf("%.2f MB", float64(size)/float64(MEGA))
	} else if size < TERA {
		return fmt.Sprintf("%.2f GB", float64(size)/float64(GIGA))
	} else {
		return fmt.Sprintf("%.2f TB", float64(size)/float64(TERA))
	}
}

// FileSizeFormat formats the size of a listed file using only KB, MB and GB.
// Anything non-empty is at least "1 KB".
func FileSizeFormat(size int64) string {
	if size < 0 {
		return ""
	} else if size == 0 {
		return "0 KB"
	}
	// each unit hands over to the next as soon as rounding would print 1000 of it
	if size < MEGA-KILO/2 {
		return fmt.Sprintf("%d KB", max((size+KILO/2)/KILO, 1))
	}
	if mb := float64(size) / float64(MEGA); mb < 999.95 {
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.2f GB", float64(size)/float64(GIGA))
}
