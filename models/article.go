package models

import (
	"time"
)

type Article struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Title      string    `json:"title" gorm:"type:varchar(255);not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	AuthorID   uint      `json:"author_id" gorm:"not null;index"`
	Author     User      `json:"author" gorm:"foreignKey:AuthorID"`
	CategoryID *uint     `json:"category_id" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Views      int64     `json:"views" gorm:"not null;default:0"`
	Tags       []Tag     `json:"tags" gorm:"many2many:article_tags;"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticleTag is the join row between articles and tags. Rows are inserted and
// removed explicitly by the tag reconciliation, never through association saves.
type ArticleTag struct {
	ArticleID uint      `json:"article_id" gorm:"primaryKey"`
	TagID     uint      `json:"tag_id" gorm:"primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (ArticleTag) TableName() string { return "article_tags" }

// IsAuthor reports whether username is the article's author. Author must be loaded.
func (a *Article) IsAuthor(username string) bool {
	return username != "" && a.Author.Username == username
}
