package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/domain"
)

func AutoMigrateAll(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
