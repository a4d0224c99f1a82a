// Package devwipe clears every application collection. It exists for local
// development resets and must only be reachable when dev tools are enabled.
package devwipe

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collections lists everything Wipe clears, in wipe order.
var Collections = []string{"chores", "events", "groups", "users"}

// Wipe deletes all documents from every application collection. Indexes are
// left in place. Failures are aggregated so a partial wipe is visible.
func Wipe(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string
	for _, name := range Collections {
		res, err := db.Collection(name).DeleteMany(ctx, bson.M{})
		if err != nil {
			problems = append(problems, name+": "+err.Error())
			continue
		}
		logger.Info("collection wiped",
			zap.String("collection", name),
			zap.Int64("deleted", res.DeletedCount))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
