package models

import (
	"gorm.io/gorm"
)

// RegisterJoinTables tells gorm to use ArticleTag for Article.Tags. It must run
// on every connection before articles are preloaded with their tags.
func RegisterJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&Article{}, "Tags", &ArticleTag{})
}

// AutoMigrate creates or updates the tables used by the application.
func AutoMigrate(db *gorm.DB) error {
	if err := RegisterJoinTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(&User{}, &Category{}, &Tag{}, &Article{}, &ArticleTag{})
}
