package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/models"
)

// CoverService stores book cover images in object storage and hands out
// short-lived presigned download links.
type CoverService struct {
	client *minio.Client
	bucket string
	books  *BookService
}

func NewCoverService(client *minio.Client, bucket string, books *BookService) *CoverService {
	return &CoverService{client: client, bucket: bucket, books: books}
}

// Upload stores a cover for the actor's book. The object write and the
// metadata update run in parallel; the object is removed again if the
// metadata write fails.
func (s *CoverService) Upload(ctx context.Context, actor *models.User, bookID string, fileHeader *multipart.FileHeader) (models.Book, error) {
	book, err := s.books.findByID(ctx, bookID)
	if err != nil {
		return models.Book{}, err
	}
	if book.OwnerID != actor.ID {
		return models.Book{}, apperr.Forbidden("only the author can set a book's cover")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.Book{}, apperr.Validation("failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Book{}, apperr.Validation("failed to read uploaded file")
	}

	objectName := fmt.Sprintf("%s_%s", uuid.NewString(), fileHeader.Filename)

	putChan := make(chan error, 1)
	metaChan := make(chan error, 1)

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, objectName,
			bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")},
		)
		putChan <- err
	}()

	go func() {
		_, err := s.books.books.UpdateOne(ctx,
			bson.M{"_id": book.ID},
			bson.M{"$set": bson.M{"cover_object": objectName}},
		)
		metaChan <- err
	}()

	putErr := <-putChan
	metaErr := <-metaChan

	if putErr != nil {
		// The metadata write may have landed; roll the pointer back so
		// it never references an object that was not stored.
		s.books.books.UpdateOne(ctx,
			bson.M{"_id": book.ID},
			bson.M{"$unset": bson.M{"cover_object": ""}},
		)
		return models.Book{}, apperr.Internal(fmt.Errorf("cover upload: %w", putErr))
	}
	if metaErr != nil {
		go func() {
			s.client.RemoveObject(context.Background(), s.bucket, objectName, minio.RemoveObjectOptions{})
		}()
		return models.Book{}, apperr.Internal(fmt.Errorf("cover metadata: %w", metaErr))
	}

	book.CoverObject = objectName
	return book, nil
}

// URL returns a 10-minute presigned download link for a book's cover.
func (s *CoverService) URL(ctx context.Context, bookID string) (string, error) {
	book, err := s.books.findByID(ctx, bookID)
	if err != nil {
		return "", err
	}
	if book.CoverObject == "" {
		return "", apperr.NotFound("cover")
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, book.CoverObject, 10*time.Minute, nil)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("presign cover: %w", err))
	}
	return u.String(), nil
}

// Remove deletes a book's cover object, if any. Best effort; used when
// a book is deleted.
func (s *CoverService) Remove(ctx context.Context, book models.Book) {
	if book.CoverObject == "" {
		return
	}
	s.client.RemoveObject(ctx, s.bucket, book.CoverObject, minio.RemoveObjectOptions{})
}
