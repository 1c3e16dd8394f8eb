package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type otpDoc struct {
	Phone     string    `bson:"_id"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// PutCode stores a verification code for the phone, overwriting any prior
// outstanding code so at most one is live per number.
func (db *DB) PutCode(ctx context.Context, phone, code string, expiresAt time.Time) error {
	opts := options.Update().SetUpsert(true)
	_, err := db.OTPCodes().UpdateOne(ctx,
		bson.M{"_id": phone},
		bson.M{"$set": bson.M{
			"code":      code,
			"expiresAt": expiresAt,
			"createdAt": time.Now(),
		}},
		opts,
	)
	return err
}

// ClaimCode atomically consumes the code for the phone if it matches and has
// not expired. Returns false on mismatch or expiry; a mismatched code stays
// live for further attempts.
func (db *DB) ClaimCode(ctx context.Context, phone, code string, now time.Time) (bool, error) {
	err := db.OTPCodes().FindOneAndDelete(ctx, bson.M{
		"_id":       phone,
		"code":      code,
		"expiresAt": bson.M{"$gt": now},
	}).Err()
	if err == mongo.ErrNoDocuments {
		// Opportunistically drop the row if it only failed because it expired.
		_, _ = db.OTPCodes().DeleteOne(ctx, bson.M{"_id": phone, "expiresAt": bson.M{"$lte": now}})
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
