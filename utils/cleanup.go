package utils

import (
	"os"
	"time"

	"github.com/kathashu/kathashu/config"
	"github.com/kathashu/kathashu/models"
)

// StartUploadCleaner launches a background goroutine that periodically deletes
// expired cover uploads recorded in the database. It is best-effort and logs failures.
func StartUploadCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// sleep first to avoid racing migrations at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			c := config.Get()
			if !c.UploadsSelfDestructEnabled {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("expire_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
				if Sugar != nil {
					Sugar.Warnf("upload cleaner query failed: %v", err)
				}
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// remove row regardless of file deletion outcome
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					if Sugar != nil {
						Sugar.Warnf("upload cleaner delete row failed: %v", err)
					}
				}
			}
		}
	}()
}
