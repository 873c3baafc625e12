package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ProfilesCollection = "profiles"
	GroupsCollection   = "groups"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func NewClient(ctx context.Context, cfg Config) (*driver.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := driver.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the unique identity indexes and the indexes the
// discovery queries sort and filter on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *driver.Database) error {
	profiles := []driver.IndexModel{
		{Keys: bson.D{{Key: "profileId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "externalId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "region", Value: 1}, {Key: "gender", Value: 1}, {Key: "createdOn", Value: -1}}},
		{Keys: bson.D{{Key: "bookmarks.profileId", Value: 1}}},
		{Keys: bson.D{{Key: "likes", Value: 1}}},
	}
	if _, err := db.Collection(ProfilesCollection).Indexes().CreateMany(ctx, profiles); err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}

	groups := []driver.IndexModel{
		{Keys: bson.D{{Key: "groupId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		{Keys: bson.D{{Key: "members.profileId", Value: 1}}},
	}
	if _, err := db.Collection(GroupsCollection).Indexes().CreateMany(ctx, groups); err != nil {
		return fmt.Errorf("create group indexes: %w", err)
	}
	return nil
}
