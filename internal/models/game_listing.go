package models

import "gorm.io/gorm"

// GameListing is a platform-specific sale page for a game, with its own
// price and URL. ReleasePrice is stored in integer minor currency units.
type GameListing struct {
	gorm.Model
	GameID       uint   `gorm:"not null;index"`
	PlatformID   uint   `gorm:"not null"`
	ReleasePrice int    `gorm:"not null"`
	ListingURL   string `gorm:"size:512;not null;index"`

	Game     Game     `gorm:"foreignKey:GameID"`
	Platform Platform `gorm:"foreignKey:PlatformID"`
}
