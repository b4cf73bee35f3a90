package models

import "time"

type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(100);not null"`
	AppliedAt time.Time `gorm:"not null"`
}
