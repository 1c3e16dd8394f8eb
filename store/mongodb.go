package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Snapshots holds one document per library collection, keyed by collection
// name.
func (db *DB) Snapshots() *mongo.Collection {
	return db.Database.Collection("snapshots")
}

// OTPCodes holds at most one live verification code per phone number.
func (db *DB) OTPCodes() *mongo.Collection {
	return db.Database.Collection("otp_codes")
}

// PendingRegistrations holds name/role submitted at registration, keyed by
// phone, until the phone is verified.
func (db *DB) PendingRegistrations() *mongo.Collection {
	return db.Database.Collection("pending_registrations")
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
