package models

import "gorm.io/gorm"

// Platform is one of the fixed storefront vocabulary {Steam, GOG, Epic},
// seeded at migration time.
type Platform struct {
	gorm.Model
	Name string `gorm:"size:50;unique;not null"`
}
