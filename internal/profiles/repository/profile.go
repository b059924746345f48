package repository

import (
	"context"
	"errors"
	"fmt"

	profileserrors "travelpartner/internal/profiles/errors"
	"travelpartner/pkg/config"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.Profile, error)
	// Replace writes the whole profile, creating it when absent.
	Replace(ctx context.Context, profile *model.Profile) error
}

type mongoProfileRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProfileRepository(cfg *config.Config) ProfileRepository {
	return &mongoProfileRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(mongotx.ProfilesCollection),
	}
}

func (r *mongoProfileRepository) FindByUID(ctx context.Context, uid string) (*model.Profile, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", profileserrors.ErrNotFound, uid)
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

func (r *mongoProfileRepository) Replace(ctx context.Context, profile *model.Profile) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": profile.UID}, profile, opts); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
