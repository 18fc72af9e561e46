package models

import "time"

type Farmer struct {
	ID          string    `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	UserID      string    `gorm:"index;size:128;not null" bson:"userId" json:"userId"`
	FarmName    string    `gorm:"size:255;not null" bson:"farmName" json:"farmName"`
	Bio         string    `gorm:"type:text;not null" bson:"bio" json:"bio"`
	Location    string    `gorm:"size:255;not null" bson:"location" json:"location"`
	Rating      float64   `gorm:"not null;index" bson:"rating" json:"rating"`
	ReviewCount int       `gorm:"not null" bson:"reviewCount" json:"reviewCount"`
	CreatedAt   time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
}
