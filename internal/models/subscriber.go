package models

import "gorm.io/gorm"

// Subscriber represents someone receiving release notifications.
// Subscribers pick the genres they care about, whether they want the weekly
// report, and whether NSFW releases may appear in their digests.
type Subscriber struct {
	gorm.Model
	Name         string `gorm:"size:255"`
	Email        string `gorm:"size:255;unique;not null"`
	WeeklyReport bool   `gorm:"not null;default:false"`
	IncludeNSFW  bool   `gorm:"not null;default:false"`

	Genres []*Genre `gorm:"many2many:subscriber_genres;"`
}
