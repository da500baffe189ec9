package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/models"
)

// BookService enforces the book lifecycle:
//
//	Draft -> Published-Available   (admin approval)
//	Published-Available <-> Published-Borrowed   (borrow / return)
//	Published-* -> Draft           (owner unpublish)
//
// Ownership checks compare owner ids, never usernames.
type BookService struct {
	books *mongo.Collection
	logs  *mongo.Collection
	users *mongo.Collection
}

func NewBookService(database *mongo.Database) *BookService {
	return &BookService{
		books: database.Collection("books"),
		logs:  database.Collection("borrow_logs"),
		users: database.Collection("users"),
	}
}

// Publish submits a new book as a draft awaiting admin approval.
func (s *BookService) Publish(ctx context.Context, owner *models.User, name string, pages int) (models.Book, error) {
	book := models.Book{
		ID:        primitive.NewObjectID(),
		OwnerID:   owner.ID,
		Author:    owner.Username,
		Name:      name,
		Pages:     pages,
		History:   []string{},
		CreatedAt: time.Now(),
	}
	if _, err := s.books.InsertOne(ctx, book); err != nil {
		return models.Book{}, apperr.Internal(err)
	}
	return book, nil
}

// Approve publishes a draft. Admin only, enforced at the route.
func (s *BookService) Approve(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid book id")
	}
	res, err := s.books.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"is_published": true}})
	if err != nil {
		return apperr.Internal(err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("book")
	}
	return nil
}

// Unpublish reverts a book to draft. Only the owner may do this.
func (s *BookService) Unpublish(ctx context.Context, actor *models.User, id string) error {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if book.OwnerID != actor.ID {
		return apperr.Forbidden("only the author can unpublish a book")
	}
	_, err = s.books.UpdateOne(ctx, bson.M{"_id": book.ID}, bson.M{"$set": bson.M{"is_published": false}})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Borrow moves a published, available book to borrowed for the actor.
// The transition is a single conditional update so two racing borrows
// cannot both win; the loser gets a conflict. Borrowing one's own book
// is allowed.
func (s *BookService) Borrow(ctx context.Context, actor *models.User, id string) (models.Book, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Book{}, apperr.Validation("invalid book id")
	}

	now := time.Now()
	res, err := s.books.UpdateOne(ctx,
		bson.M{"_id": objID, "is_published": true, "is_borrowed": false},
		bson.M{
			"$set": bson.M{
				"is_borrowed": true,
				"borrowed_by": actor.ID,
				"borrowed_at": now,
			},
			"$push": bson.M{
				"history": fmt.Sprintf("Borrowed by %s at %s", actor.Username, now.Format(time.RFC3339)),
			},
		},
	)
	if err != nil {
		return models.Book{}, apperr.Internal(err)
	}
	if res.ModifiedCount == 0 {
		// Lost the conditional write. Read back to say why.
		book, err := s.findByID(ctx, id)
		if err != nil {
			return models.Book{}, err
		}
		if !book.IsPublished {
			if actor.IsAdmin {
				return models.Book{}, apperr.Conflict("book is not published")
			}
			return models.Book{}, apperr.NotFound("book")
		}
		return models.Book{}, apperr.Conflict("book is already borrowed")
	}

	log := models.BorrowLog{
		ID:        primitive.NewObjectID(),
		User:      actor.ID,
		Book:      objID,
		From:      now,
		To:        nil,
		CreatedAt: now,
	}
	if _, err := s.logs.InsertOne(ctx, log); err != nil {
		// The book stays borrowed; there is no compensation here.
		return models.Book{}, apperr.Internal(err)
	}

	return s.findByID(ctx, id)
}

// Return moves a borrowed book back to available. Only the borrower may
// return it. The write is conditioned on the borrower to stay race-safe.
func (s *BookService) Return(ctx context.Context, actor *models.User, id string) (models.Book, error) {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if !book.IsBorrowed {
		return models.Book{}, apperr.Conflict("book is not currently borrowed")
	}
	if book.BorrowedBy == nil || *book.BorrowedBy != actor.ID {
		return models.Book{}, apperr.Forbidden("you can only return books that you borrowed")
	}

	now := time.Now()
	res, err := s.books.UpdateOne(ctx,
		bson.M{"_id": book.ID, "is_borrowed": true, "borrowed_by": actor.ID},
		bson.M{
			"$set": bson.M{
				"is_borrowed": false,
				"borrowed_by": nil,
				"borrowed_at": nil,
			},
			"$push": bson.M{
				"history": fmt.Sprintf("Returned by %s at %s", actor.Username, now.Format(time.RFC3339)),
			},
		},
	)
	if err != nil {
		return models.Book{}, apperr.Internal(err)
	}
	if res.ModifiedCount == 0 {
		return models.Book{}, apperr.Conflict("book is not currently borrowed")
	}

	// Close the newest open log for this loan.
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "from", Value: -1}})
	err = s.logs.FindOneAndUpdate(ctx,
		bson.M{"user": actor.ID, "book": book.ID, "to": nil},
		bson.M{"$set": bson.M{"to": now}},
		opts,
	).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return models.Book{}, apperr.Internal(err)
	}

	return s.findByID(ctx, id)
}

// List returns published books, or every book when the caller is admin.
func (s *BookService) List(ctx context.Context, actor *models.User) ([]models.Book, error) {
	filter := bson.M{"is_published": true}
	if actor.IsAdmin {
		filter = bson.M{}
	}
	return s.find(ctx, filter)
}

// ListUnpublished returns drafts awaiting approval.
func (s *BookService) ListUnpublished(ctx context.Context) ([]models.Book, error) {
	return s.find(ctx, bson.M{"is_published": false})
}

// MyBooks returns books the actor authored, drafts included.
func (s *BookService) MyBooks(ctx context.Context, actor *models.User) ([]models.Book, error) {
	return s.find(ctx, bson.M{"owner_id": actor.ID})
}

// MyPublished returns the actor's books that are live.
func (s *BookService) MyPublished(ctx context.Context, actor *models.User) ([]models.Book, error) {
	return s.find(ctx, bson.M{"owner_id": actor.ID, "is_published": true})
}

// CurrentBorrows returns books the actor currently holds.
func (s *BookService) CurrentBorrows(ctx context.Context, actor *models.User) ([]models.Book, error) {
	return s.find(ctx, bson.M{"is_borrowed": true, "borrowed_by": actor.ID})
}

// History returns a book's append-only history log.
func (s *BookService) History(ctx context.Context, id string) ([]string, error) {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return book.History, nil
}

// UserHistory returns the actor's borrow logs, newest first.
func (s *BookService) UserHistory(ctx context.Context, actor *models.User) ([]models.BorrowLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "from", Value: -1}})
	cursor, err := s.logs.Find(ctx, bson.M{"user": actor.ID}, opts)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer cursor.Close(ctx)

	logs := []models.BorrowLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}

// Update edits a book's name and page count. Owner or admin only.
func (s *BookService) Update(ctx context.Context, actor *models.User, id, name string, pages int) (models.Book, error) {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if book.OwnerID != actor.ID && !actor.IsAdmin {
		return models.Book{}, apperr.Forbidden("only the author can edit a book")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Book
	err = s.books.FindOneAndUpdate(ctx,
		bson.M{"_id": book.ID},
		bson.M{"$set": bson.M{"name": name, "pages": pages}},
		opts,
	).Decode(&updated)
	if err != nil {
		return models.Book{}, apperr.Internal(err)
	}
	return updated, nil
}

// Delete removes a book. Owner or admin only. The deleted document is
// returned so the caller can clean up its cover object.
func (s *BookService) Delete(ctx context.Context, actor *models.User, id string) (models.Book, error) {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if book.OwnerID != actor.ID && !actor.IsAdmin {
		return models.Book{}, apperr.Forbidden("only the author can delete a book")
	}
	if _, err := s.books.DeleteOne(ctx, bson.M{"_id": book.ID}); err != nil {
		return models.Book{}, apperr.Internal(err)
	}
	return book, nil
}

func (s *BookService) findByID(ctx context.Context, id string) (models.Book, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Book{}, apperr.Validation("invalid book id")
	}
	var book models.Book
	if err := s.books.FindOne(ctx, bson.M{"_id": objID}).Decode(&book); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Book{}, apperr.NotFound("book")
		}
		return models.Book{}, apperr.Internal(err)
	}
	return book, nil
}

func (s *BookService) find(ctx context.Context, filter bson.M) ([]models.Book, error) {
	cursor, err := s.books.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer cursor.Close(ctx)

	books := []models.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.resolveAuthors(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// resolveAuthors refreshes the denormalized author names from the users
// collection in one batched lookup. Books whose owner was deleted keep
// the stored name.
func (s *BookService) resolveAuthors(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(books))
	seen := map[primitive.ObjectID]bool{}
	for _, b := range books {
		if !seen[b.OwnerID] {
			seen[b.OwnerID] = true
			ids = append(ids, b.OwnerID)
		}
	}

	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return apperr.Internal(err)
	}
	defer cursor.Close(ctx)

	var owners []models.User
	if err := cursor.All(ctx, &owners); err != nil {
		return apperr.Internal(err)
	}
	names := make(map[primitive.ObjectID]string, len(owners))
	for _, u := range owners {
		names[u.ID] = u.Username
	}
	for i := range books {
		if name, ok := names[books[i].OwnerID]; ok {
			books[i].Author = name
		}
	}
	return nil
}
