package models

type Category struct {
	ID   string `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	Name string `gorm:"size:255;not null" bson:"name" json:"name"`
	Icon string `gorm:"size:64;not null" bson:"icon" json:"icon"`
}
