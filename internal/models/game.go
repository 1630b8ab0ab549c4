package models

import (
	"time"

	"gorm.io/gorm"
)

// Game represents a single scraped release. A game is created once per
// distinct listing URL per ingestion day and is never updated afterwards.
type Game struct {
	gorm.Model
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"not null"`
	ReleaseDate time.Time `gorm:"type:date;not null;index"`
	IsNSFW      bool      `gorm:"not null;default:false"`
	ImageURL    string    `gorm:"size:512"`

	Genres           []*Genre           `gorm:"many2many:game_genre_assignments;"`
	OperatingSystems []*OperatingSystem `gorm:"many2many:game_os_assignments;"`
	Listings         []GameListing      `gorm:"foreignKey:GameID"`
}
