package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opratem/schoolems/internal/core/domain"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email,omitempty"`
	PasswordHash     string             `bson:"password_hash"`
	Roles            []string           `bson:"roles"`
	EmployeeID       string             `bson:"employee_id,omitempty"`
	ResetToken       string             `bson:"reset_token,omitempty"`
	ResetTokenExpiry int64              `bson:"reset_token_expiry,omitempty"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	doc := mongoUser{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        u.RoleNames(),
		EmployeeID:   u.EmployeeID,
		ResetToken:   u.ResetToken,
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}
	if !u.ResetTokenExpiry.IsZero() {
		doc.ResetTokenExpiry = u.ResetTokenExpiry.Unix()
	}
	return doc
}

func (mu mongoUser) toDomain() *domain.User {
	roles := make([]domain.Role, len(mu.Roles))
	for i, name := range mu.Roles {
		roles[i] = domain.Role(name)
	}

	u := &domain.User{
		ID:           mu.ID.Hex(),
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Roles:        roles,
		EmployeeID:   mu.EmployeeID,
		ResetToken:   mu.ResetToken,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
	if mu.ResetTokenExpiry != 0 {
		u.ResetTokenExpiry = unixToTime(mu.ResetTokenExpiry)
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// Update replaces the whole document keyed by id, so a password or reset
// token write on a single user is atomic.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := toMongoUser(user)
	doc.ID = oid

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, userUpdateDoc(doc, user))
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// userUpdateDoc builds the update for a whole-document write. The omitempty
// bson tags drop cleared optional fields from $set, so those need an explicit
// $unset or the stored value would silently survive the update.
func userUpdateDoc(doc mongoUser, user *domain.User) bson.M {
	unset := bson.M{}
	if user.Email == "" {
		unset["email"] = ""
	}
	if user.EmployeeID == "" {
		unset["employee_id"] = ""
	}
	if user.ResetToken == "" {
		unset["reset_token"] = ""
		unset["reset_token_expiry"] = ""
	}

	update := bson.M{"$set": doc}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// EnsureIndexes creates the uniqueness constraints the auth core relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: indexUnique(),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: indexUniqueSparse(),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: indexUniqueSparse(),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
