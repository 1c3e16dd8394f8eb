package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type snapshotDoc struct {
	Key  string `bson:"_id"`
	Data []byte `bson:"data"`
}

// Load returns the stored snapshot for key, or (nil, nil) if none exists.
// Implements library.Snapshots.
func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var doc snapshotDoc
	err := db.Snapshots().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// Save rewrites the snapshot for key in full.
func (db *DB) Save(ctx context.Context, key string, data []byte) error {
	opts := options.Update().SetUpsert(true)
	_, err := db.Snapshots().UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"data": data}},
		opts,
	)
	return err
}
