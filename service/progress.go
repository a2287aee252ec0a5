package service

import "github.com/m-manu/picstream/entity"

// NormalizePercent maps a 0-100 transfer percentage to a fraction in [0,1]
func NormalizePercent(percent int) float64 {
	f := float64(percent) / 100.0
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Aggregate is the overall progress of a batch: the mean of its items, completed ones counting as 1
func Aggregate(items []entity.UploadItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var total float64
	for _, item := range items {
		if item.Completed {
			total += 1
		} else {
			total += item.Progress
		}
	}
	return total / float64(len(items))
}
