package models

import "time"

// User is the root identity. Its ID is normally the subject issued by the
// external auth provider.
type User struct {
	ID        string    `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:320;not null" bson:"email" json:"email"`
	Name      string    `gorm:"size:255;not null" bson:"name" json:"name"`
	CreatedAt time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
}
