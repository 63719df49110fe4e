package repository

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"mindcare-be/internal/entities"
)

// AccountsCollection matches the collection the mobile backend has always used
const AccountsCollection = "users"

// accountDocument is the stored shape of an account. The hash lives under
// "password" for compatibility with existing documents.
type accountDocument struct {
	ID           bson.ObjectID `bson:"_id"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	CreatedAt    time.Time     `bson:"created_at,omitempty"`
}

func (d *accountDocument) toEntity() *entities.Account {
	return &entities.Account{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoAccountRepository creates an account store backed by a document
// collection. Call EnsureMongoIndexes once at startup.
func NewMongoAccountRepository(db *mongo.Database) AccountRepository {
	return &mongoRepository{coll: db.Collection(AccountsCollection)}
}

// EnsureMongoIndexes creates the unique email index that enforces uniqueness
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(AccountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return oops.Code("ACCOUNT_INDEX_FAILED").
			With("collection", AccountsCollection).
			Wrap(err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, name, email, passwordHash string) (*entities.Account, error) {
	doc := accountDocument{
		ID:           bson.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, oops.Code("ACCOUNT_DUPLICATE_EMAIL").Wrap(ErrDuplicateEmail)
		}
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return doc.toEntity(), nil
}

func (r *mongoRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, "find account by email")
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*entities.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("id", id).Wrap(ErrAccountNotFound)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, "find account by id")
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.D, operation string) (*entities.Account, error) {
	var doc accountDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(ErrAccountNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FIND_FAILED").
			With("operation", operation).
			Wrap(err)
	}
	return doc.toEntity(), nil
}
