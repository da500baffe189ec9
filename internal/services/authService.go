package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/models"
	"github.com/booknest/booknest/internal/utils"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT signs an identity token carrying the user id and email.
func GenerateJWT(secret []byte, userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthService owns the users collection, plus the book collections it
// touches when a user delete cascades.
type AuthService struct {
	users  *mongo.Collection
	books  *mongo.Collection
	logs   *mongo.Collection
	secret []byte
}

func NewAuthService(database *mongo.Database, jwtSecret string) *AuthService {
	return &AuthService{
		users:  database.Collection("users"),
		books:  database.Collection("books"),
		logs:   database.Collection("borrow_logs"),
		secret: []byte(jwtSecret),
	}
}

// Register creates a new user and returns it with a signed token.
// Duplicate email or username is rejected before the insert.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (models.User, string, error) {
	var existing models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		return models.User{}, "", apperr.Validation("email already in use")
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, "", apperr.Internal(err)
	}
	err = s.users.FindOne(ctx, bson.M{"username": username}).Decode(&existing)
	if err == nil {
		return models.User{}, "", apperr.Validation("username already in use")
	}
	if err != mongo.ErrNoDocuments {
		return models.User{}, "", apperr.Internal(err)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return models.User{}, "", apperr.Internal(err)
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  hashed,
		CreatedAt: time.Now(),
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return models.User{}, "", apperr.Internal(err)
	}

	token, err := GenerateJWT(s.secret, user.ID.Hex(), user.Email)
	if err != nil {
		return models.User{}, "", apperr.Internal(err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return models.User{}, "", apperr.Validation("invalid credentials")
	}
	if !VerifyPassword(password, user.Password) {
		return models.User{}, "", apperr.Validation("invalid credentials")
	}

	token, err := GenerateJWT(s.secret, user.ID.Hex(), user.Email)
	if err != nil {
		return models.User{}, "", apperr.Internal(err)
	}
	return user, token, nil
}

// UpdateProfile changes username and/or email, rejecting values already
// taken by another user. A username change rewrites the denormalized
// author field on the user's books so listings stay coherent.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, username, email string) (models.User, error) {
	set := bson.M{}
	if email != "" && email != user.Email {
		n, err := s.users.CountDocuments(ctx, bson.M{"email": email, "_id": bson.M{"$ne": user.ID}})
		if err != nil {
			return models.User{}, apperr.Internal(err)
		}
		if n > 0 {
			return models.User{}, apperr.Validation("email already in use")
		}
		set["email"] = email
	}
	if username != "" && username != user.Username {
		n, err := s.users.CountDocuments(ctx, bson.M{"username": username, "_id": bson.M{"$ne": user.ID}})
		if err != nil {
			return models.User{}, apperr.Internal(err)
		}
		if n > 0 {
			return models.User{}, apperr.Validation("username already in use")
		}
		set["username"] = username
	}
	if len(set) == 0 {
		return *user, nil
	}

	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
		return models.User{}, apperr.Internal(err)
	}
	if newName, ok := set["username"]; ok {
		_, err := s.books.UpdateMany(ctx, bson.M{"owner_id": user.ID}, bson.M{"$set": bson.M{"author": newName}})
		if err != nil {
			return models.User{}, apperr.Internal(err)
		}
	}

	updated := *user
	if v, ok := set["username"].(string); ok {
		updated.Username = v
	}
	if v, ok := set["email"].(string); ok {
		updated.Email = v
	}
	return updated, nil
}

// ListUsers returns every user without password hashes.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// MakeAdmin promotes a user.
func (s *AuthService) MakeAdmin(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "is_admin", true)
}

// Block prevents a user from passing the access guard. Takes effect on
// the user's next request since identity is looked up fresh each time.
func (s *AuthService) Block(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "is_blocked", true)
}

// Unblock lifts a block.
func (s *AuthService) Unblock(ctx context.Context, id string) error {
	return s.setFlag(ctx, id, "is_blocked", false)
}

func (s *AuthService) setFlag(ctx context.Context, id, field string, value bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid user id")
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return apperr.Internal(err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// DeleteUser removes a user and cascades to their authored books and
// borrow logs. Admins cannot delete their own account.
func (s *AuthService) DeleteUser(ctx context.Context, actor *models.User, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validation("invalid user id")
	}
	if actor.ID == objID {
		return apperr.Forbidden("admins cannot delete their own account")
	}

	var deleted models.User
	if err := s.users.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&deleted); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("user")
		}
		return apperr.Internal(err)
	}

	errs := utils.RunParallel(
		func() error {
			_, err := s.books.DeleteMany(ctx, bson.M{"owner_id": deleted.ID})
			return err
		},
		func() error {
			_, err := s.logs.DeleteMany(ctx, bson.M{"user": deleted.ID})
			return err
		},
	)
	if err := utils.FirstError(errs); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
