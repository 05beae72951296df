package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product categories.  The set is closed; anything else fails validation.
const (
	CategoryProtein    = "Protein Products"
	CategoryWeight     = "Weight Management"
	CategorySkinCare   = "Skin Care"
	CategoryHealthCare = "Health Care"
)

// Categories lists the accepted category values in display order.
var Categories = []string{CategoryProtein, CategoryWeight, CategorySkinCare, CategoryHealthCare}

// IsCategory reports whether s is one of the fixed categories.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// Product is a document in the `products` collection.  ImageURL always
// points at exactly one stored image under the public uploads prefix.
type Product struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description" json:"description"`
	Category    string        `bson:"category" json:"category"`
	Price       float64       `bson:"price" json:"price"`
	Stock       int           `bson:"stock" json:"stock"`
	ImageURL    string        `bson:"imageUrl" json:"imageUrl"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy   string        `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// ProductChanges lists the fields a partial update may touch.  Nil means
// "leave as is".
type ProductChanges struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	Stock       *int
	ImageURL    *string
	UpdatedBy   string
}
