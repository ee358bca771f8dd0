package events

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const ArchiveCollection = "appointment_events"

// Archive keeps a copy of every lifecycle event in Mongo.
type Archive struct {
	coll *mongo.Collection
}

func NewArchive(db *mongo.Database) *Archive {
	return &Archive{coll: db.Collection(ArchiveCollection)}
}

func (a *Archive) Publish(ctx context.Context, e Event) error {
	if _, err := a.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("archive %s: %w", e.Name, err)
	}
	return nil
}
