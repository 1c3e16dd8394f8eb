package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PendingRegistration is registration data held against a phone number until
// its verification code is confirmed.
type PendingRegistration struct {
	Phone     string    `bson:"_id"`
	Name      string    `bson:"name"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"createdAt"`
}

// PutPendingRegistration stores (or replaces) the pending name/role for a
// phone number.
func (db *DB) PutPendingRegistration(ctx context.Context, phone, name, role string) error {
	opts := options.Update().SetUpsert(true)
	_, err := db.PendingRegistrations().UpdateOne(ctx,
		bson.M{"_id": phone},
		bson.M{"$set": bson.M{
			"name":      name,
			"role":      role,
			"createdAt": time.Now(),
		}},
		opts,
	)
	return err
}

// PendingRegistrationFor returns the pending entry for a phone, or nil if
// none exists.
func (db *DB) PendingRegistrationFor(ctx context.Context, phone string) (*PendingRegistration, error) {
	var p PendingRegistration
	err := db.PendingRegistrations().FindOne(ctx, bson.M{"_id": phone}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePendingRegistration clears the pending entry for a phone.
func (db *DB) DeletePendingRegistration(ctx context.Context, phone string) error {
	_, err := db.PendingRegistrations().DeleteOne(ctx, bson.M{"_id": phone})
	return err
}
