package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// MongoLedgerService implements Ledger on MongoDB. Per-key atomicity comes
// from single-document update semantics: every mutation is one filtered
// update on the profile document, so concurrent operations on the same key
// serialize in the store and different keys never contend.
type MongoLedgerService struct {
	client      *mongo.Client
	db          *mongo.Database
	profilesCol *mongo.Collection
	flagsCol    *mongo.Collection
	clock       clockwork.Clock
}

func NewMongoLedgerService(ctx context.Context, mongoURI, dbName string, clock clockwork.Clock) (*MongoLedgerService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	profiles := db.Collection("profiles")
	flags := db.Collection("flags")

	// Best-effort indexes.
	_, _ = profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "hearts", Value: -1}},
	})
	_, _ = flags.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_key", Value: 1}},
	})

	return &MongoLedgerService{
		client:      client,
		db:          db,
		profilesCol: profiles,
		flagsCol:    flags,
		clock:       clock,
	}, nil
}

func (s *MongoLedgerService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoLedgerService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *MongoLedgerService) GetOrCreate(ctx context.Context, userKey, guildID, userID, username string, startingHearts int) (*models.UserProfile, error) {
	var prof models.UserProfile
	err := s.profilesCol.FindOne(ctx, bson.M{"user_key": userKey}).Decode(&prof)
	if err == nil {
		return &prof, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("ledger: get: %w", err)
	}

	now := s.now()
	prof = models.UserProfile{
		UserKey:      userKey,
		GuildID:      guildID,
		UserID:       userID,
		Username:     username,
		Hearts:       startingHearts,
		FlaggedCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.profilesCol.InsertOne(ctx, prof); err != nil {
		// If a race created it first, fetch the winner.
		var retry models.UserProfile
		if err2 := s.profilesCol.FindOne(ctx, bson.M{"user_key": userKey}).Decode(&retry); err2 == nil {
			return &retry, nil
		}
		return nil, fmt.Errorf("ledger: create: %w", err)
	}
	return &prof, nil
}

func (s *MongoLedgerService) Get(ctx context.Context, userKey string) (*models.UserProfile, error) {
	var prof models.UserProfile
	if err := s.profilesCol.FindOne(ctx, bson.M{"user_key": userKey}).Decode(&prof); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("ledger: get: %w", err)
	}
	return &prof, nil
}

func (s *MongoLedgerService) AddHearts(ctx context.Context, userKey string, delta int) (int, error) {
	// Update pipeline so the zero clamp happens inside the store.
	update := bson.A{
		bson.M{"$set": bson.M{
			"hearts":     bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$hearts", delta}}}},
			"updated_at": s.now(),
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var prof models.UserProfile
	if err := s.profilesCol.FindOneAndUpdate(ctx, bson.M{"user_key": userKey}, update, opts).Decode(&prof); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("ledger: add hearts: %w", err)
	}
	return prof.Hearts, nil
}

func (s *MongoLedgerService) IncrementFlag(ctx context.Context, userKey string) (int, error) {
	update := bson.M{
		"$inc": bson.M{"flagged_count": 1},
		"$set": bson.M{"updated_at": s.now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var prof models.UserProfile
	if err := s.profilesCol.FindOneAndUpdate(ctx, bson.M{"user_key": userKey}, update, opts).Decode(&prof); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("ledger: increment flag: %w", err)
	}
	return prof.FlaggedCount, nil
}

func (s *MongoLedgerService) RecordFlag(ctx context.Context, userKey string, rec models.FlagRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.UserKey = userKey
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	if _, err := s.flagsCol.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("ledger: record flag: %w", err)
	}
	return nil
}

func (s *MongoLedgerService) ApplyDailyBonusIfDue(ctx context.Context, userKey string, bonus int) (int, bool, error) {
	today := s.now().Format("2006-01-02")

	// The filter makes this a check-and-set: only a document whose bonus date
	// is not today matches, so one of two simultaneous attempts loses.
	res, err := s.profilesCol.UpdateOne(ctx,
		bson.M{"user_key": userKey, "last_daily_bonus": bson.M{"$ne": today}},
		bson.M{
			"$inc": bson.M{"hearts": bonus},
			"$set": bson.M{"last_daily_bonus": today, "updated_at": s.now()},
		},
	)
	if err != nil {
		return 0, false, fmt.Errorf("ledger: daily bonus: %w", err)
	}
	if res.ModifiedCount == 0 {
		return 0, false, nil
	}

	prof, err := s.Get(ctx, userKey)
	if err != nil {
		return 0, false, err
	}
	return prof.Hearts, true, nil
}

func (s *MongoLedgerService) EnsureMinHearts(ctx context.Context, userKey string, floor int) (int, error) {
	update := bson.M{
		"$max": bson.M{"hearts": floor},
		"$set": bson.M{"updated_at": s.now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var prof models.UserProfile
	if err := s.profilesCol.FindOneAndUpdate(ctx, bson.M{"user_key": userKey}, update, opts).Decode(&prof); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("ledger: ensure min hearts: %w", err)
	}
	return prof.Hearts, nil
}

func (s *MongoLedgerService) SetTier(ctx context.Context, userKey, tier string) error {
	_, err := s.profilesCol.UpdateOne(ctx, bson.M{"user_key": userKey}, bson.M{
		"$set": bson.M{"tier": tier, "updated_at": s.now()},
	})
	if err != nil {
		return fmt.Errorf("ledger: set tier: %w", err)
	}
	return nil
}

func (s *MongoLedgerService) SetUsername(ctx context.Context, userKey, username string) error {
	_, err := s.profilesCol.UpdateOne(ctx, bson.M{"user_key": userKey}, bson.M{
		"$set": bson.M{"username": username, "updated_at": s.now()},
	})
	if err != nil {
		return fmt.Errorf("ledger: set username: %w", err)
	}
	return nil
}

func (s *MongoLedgerService) Delete(ctx context.Context, userKey string) error {
	// Flag records first, then the profile, mirroring the cascade contract.
	if _, err := s.flagsCol.DeleteMany(ctx, bson.M{"user_key": userKey}); err != nil {
		return fmt.Errorf("ledger: delete flags: %w", err)
	}
	if _, err := s.profilesCol.DeleteOne(ctx, bson.M{"user_key": userKey}); err != nil {
		return fmt.Errorf("ledger: delete profile: %w", err)
	}
	return nil
}

func (s *MongoLedgerService) TopByGuild(ctx context.Context, guildID string, limit int) ([]models.UserProfile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "hearts", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.profilesCol.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ledger: top by guild: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.UserProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("ledger: top by guild: %w", err)
	}
	return out, nil
}
