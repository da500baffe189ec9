package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a library book document. OwnerID is the authoritative
// ownership reference; Author is the owner's username, denormalized for
// display and refreshed at read time.
//
// Invariant: IsBorrowed is true iff BorrowedBy and BorrowedAt are both set.
type Book struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID  `bson:"owner_id" json:"ownerId"`
	Author      string              `bson:"author" json:"author"`
	Name        string              `bson:"name" json:"name"`
	Pages       int                 `bson:"pages" json:"pages"`
	IsPublished bool                `bson:"is_published" json:"isPublished"`
	IsBorrowed  bool                `bson:"is_borrowed" json:"isBorrowed"`
	BorrowedBy  *primitive.ObjectID `bson:"borrowed_by" json:"borrowedBy"`
	BorrowedAt  *time.Time          `bson:"borrowed_at" json:"borrowedAt"`
	History     []string            `bson:"history" json:"history"`
	CoverObject string              `bson:"cover_object,omitempty" json:"-"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
}

// BorrowLog records one loan. To is nil while the loan is open and set
// to the return time when it closes.
type BorrowLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Book      primitive.ObjectID `bson:"book" json:"book"`
	From      time.Time          `bson:"from" json:"from"`
	To        *time.Time         `bson:"to" json:"to"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
