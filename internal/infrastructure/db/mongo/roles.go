package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opratem/schoolems/internal/core/domain"
)

const rolesCollection = "roles"

// EnsureRoles seeds the closed role set. The upsert makes it idempotent, so
// it runs unconditionally at every startup.
func EnsureRoles(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	coll := db.Collection(rolesCollection)
	for _, role := range domain.AllRoles {
		filter := bson.M{"name": string(role)}
		update := bson.M{"$setOnInsert": bson.M{"name": string(role), "created_at": time.Now().UTC()}}
		if _, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}
	}
	return nil
}
