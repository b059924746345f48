package repository

import (
	"context"
	"fmt"
	"time"

	"travelpartner/pkg/config"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CaseRepository records reconcile cases. Recording the same inconsistency
// twice keeps a single open case.
type CaseRepository interface {
	// Record stores c unless an open case of the same kind for the same
	// checkout and booking ref exists. It reports whether c was new.
	Record(ctx context.Context, c *model.ReconcileCase) (bool, error)
	FindOpen(ctx context.Context, kind string, limit int) ([]*model.ReconcileCase, error)
}

type mongoCaseRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCaseRepository(cfg *config.Config) CaseRepository {
	return &mongoCaseRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(mongotx.ReconcileCasesCollection),
	}
}

// CaseKey identifies the open case a new one would duplicate.
func CaseKey(c *model.ReconcileCase) bson.M {
	return bson.M{
		"kind":        c.Kind,
		"checkout_id": c.CheckoutID,
		"booking_ref": c.BookingRef,
		"resolved":    false,
	}
}

func (r *mongoCaseRepository) Record(ctx context.Context, c *model.ReconcileCase) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	c.Resolved = false

	insert := bson.M{
		"kind":         c.Kind,
		"inventory_id": c.InventoryID,
		"fare_class":   c.FareClass,
		"seat_numbers": c.SeatNumbers,
		"booking_ref":  c.BookingRef,
		"checkout_id":  c.CheckoutID,
		"payment_id":   c.PaymentID,
		"detail":       c.Detail,
		"resolved":     false,
		"created_at":   c.CreatedAt,
	}
	opts := options.Update().SetUpsert(true)

	result, err := r.collection.UpdateOne(ctx, CaseKey(c), bson.M{"$setOnInsert": insert}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to record reconcile case: %w", err)
	}
	if result.UpsertedID == nil {
		return false, nil
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return true, nil
}

func (r *mongoCaseRepository) FindOpen(ctx context.Context, kind string, limit int) ([]*model.ReconcileCase, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"resolved": false}
	if kind != "" {
		filter["kind"] = kind
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reconcile cases: %w", err)
	}
	defer cursor.Close(ctx)

	cases := []*model.ReconcileCase{}
	if err := cursor.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("failed to decode reconcile cases: %w", err)
	}
	return cases, nil
}
