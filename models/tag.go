package models

import (
	"time"
)

// Tag names are stored lowercase and are shared by all articles.
type Tag struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type TagDetails struct {
	Tag      Tag       `json:"tag"`
	Articles []Article `json:"articles"`
}
