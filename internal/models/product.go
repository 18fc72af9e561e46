package models

import "time"

type Product struct {
	ID          string    `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	FarmerID    string    `gorm:"index;size:128;not null" bson:"farmerId" json:"farmerId"`
	CategoryID  string    `gorm:"index;size:128;not null" bson:"categoryId" json:"categoryId"`
	Name        string    `gorm:"size:255;not null" bson:"name" json:"name"`
	Description string    `gorm:"type:text;not null" bson:"description" json:"description"`
	Price       Price     `gorm:"not null" bson:"price" json:"price"`
	Unit        string    `gorm:"size:32;not null" bson:"unit" json:"unit"`
	ImageURL    string    `gorm:"size:1024;not null" bson:"imageUrl" json:"imageUrl"`
	InStock     bool      `gorm:"not null" bson:"inStock" json:"inStock"`
	Featured    bool      `gorm:"not null;index" bson:"featured" json:"featured"`
	Rating      float64   `gorm:"not null" bson:"rating" json:"rating"`
	ReviewCount int       `gorm:"not null" bson:"reviewCount" json:"reviewCount"`
	CreatedAt   time.Time `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
}

// ProductUpdate carries a partial edit. Nil fields are left untouched.
type ProductUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *string `json:"categoryId"`
	Price       *Price  `json:"price"`
	Unit        *string `json:"unit"`
	ImageURL    *string `json:"imageUrl"`
	InStock     *bool   `json:"inStock"`
	Featured    *bool   `json:"featured"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.CategoryID == nil && u.Price == nil &&
		u.Unit == nil && u.ImageURL == nil && u.InStock == nil && u.Featured == nil
}

// Apply copies the set fields onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.CategoryID != nil {
		p.CategoryID = *u.CategoryID
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.InStock != nil {
		p.InStock = *u.InStock
	}
	if u.Featured != nil {
		p.Featured = *u.Featured
	}
}
