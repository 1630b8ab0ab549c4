package models

import "gorm.io/gorm"

// Genre represents a game genre (e.g., "Action", "Indie", "RPG").
// Genres are created lazily on first encounter by any listing and only grow.
type Genre struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
