package models

import "gorm.io/gorm"

// OperatingSystem is one of the fixed vocabulary {Windows, Mac, Linux},
// seeded at migration time. There is no lazy-create path for OS rows.
type OperatingSystem struct {
	gorm.Model
	Name string `gorm:"size:50;unique;not null"`
}
