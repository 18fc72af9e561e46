package models

import "time"

// Review targets a product, a farmer, or both.
type Review struct {
	ID        string    `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	UserID    string    `gorm:"index;size:128" bson:"userId,omitempty" json:"userId,omitempty"`
	ProductID *string   `gorm:"index;size:128" bson:"productId,omitempty" json:"productId"`
	FarmerID  *string   `gorm:"index;size:128" bson:"farmerId,omitempty" json:"farmerId"`
	Rating    int       `gorm:"not null" bson:"rating" json:"rating"`
	Comment   string    `gorm:"type:text;not null" bson:"comment" json:"comment"`
	CreatedAt time.Time `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
}
