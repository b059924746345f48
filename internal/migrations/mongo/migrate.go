package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelpartner/internal/migrations/mongo/validators"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/logger"
)

var (
	InventoryIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "mode", Value: 1}, {Key: "number", Value: 1}}},
		{Keys: bson.D{
			{Key: "mode", Value: 1},
			{Key: "source.city_key", Value: 1},
			{Key: "destination.city_key", Value: 1},
			{Key: "departure_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "owner_uid", Value: 1}, {Key: "departure_time", Value: 1}}},
		{Keys: bson.D{{Key: "fare_classes.seats.status", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client_booking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "purchaser.uid", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	CheckoutsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "payment_order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}}},
	}

	ProfilesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	ReconcileCasesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "kind", Value: 1},
			{Key: "resolved", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "kind", Value: 1},
			{Key: "checkout_id", Value: 1},
			{Key: "booking_ref", Value: 1},
			{Key: "resolved", Value: 1},
		}},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the services expect, in creation order.
func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: mongotx.InventoryCollection, Indexes: InventoryIndexes, Validator: validators.InventoryValidator},
		{Name: mongotx.BookingsCollection, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: mongotx.CheckoutsCollection, Indexes: CheckoutsIndexes, Validator: validators.CheckoutValidator},
		{Name: mongotx.ProfilesCollection, Indexes: ProfilesIndexes, Validator: validators.ProfileValidator},
		{Name: mongotx.ReconcileCasesCollection, Indexes: ReconcileCasesIndexes, Validator: validators.ReconcileCaseValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
