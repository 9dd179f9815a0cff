package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:100;not null;uniqueIndex"`
	Slug        string  `gorm:"size:100;not null;uniqueIndex"`
	Description string  `gorm:"type:text"`
	ImageURL    *string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Category) BeforeSave(tx *gorm.DB) (err error) {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return
}
