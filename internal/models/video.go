package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	CategoryID  string             `json:"categoryId" bson:"categoryId"`
	Part        string             `json:"part,omitempty" bson:"part,omitempty"`
	IsPaid      bool               `json:"isPaid" bson:"isPaid"`
	Description string             `json:"description" bson:"description"`
	VideoKey    string             `json:"-" bson:"videoKey"`
	VideoURL    string             `json:"videoUrl" bson:"videoUrl"`
	ImageKey    string             `json:"-" bson:"imageKey"`
	ImageURL    string             `json:"imageUrl" bson:"imageUrl"`
	CreatedAt   time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updatedAt"`
}

// Payment is the review payload forwarded to the approval console. It is
// never persisted, the deposit is cross-checked manually by the operator.
type Payment struct {
	Phone    string `json:"phone"`
	NumDepot string `json:"numDepot"`
	Domain   string `json:"domaine"`
	Part     string `json:"part"`
	Mode     string `json:"mode"`
	Price    string `json:"price"`
}
