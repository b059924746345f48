package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "travelpartner/internal/bookings/errors"
	"travelpartner/pkg/config"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Transition carries the fields recorded alongside a status change. Empty
// fields are left untouched.
type Transition struct {
	PaymentID     string
	BookingID     string
	FailureReason string
}

// CheckoutRepository persists checkouts, the write-ahead record of every
// booking attempt. Status changes are compare-and-set on the current status.
type CheckoutRepository interface {
	Create(ctx context.Context, checkout *model.Checkout) error
	FindByID(ctx context.Context, id string) (*model.Checkout, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Checkout, error)
	Transition(ctx context.Context, id string, from, to string, t Transition) error
	// FindStale returns checkouts in status whose timeField is before cutoff,
	// oldest first.
	FindStale(ctx context.Context, status string, timeField string, cutoff time.Time, limit int) ([]*model.Checkout, error)
}

type mongoCheckoutRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCheckoutRepository(cfg *config.Config) CheckoutRepository {
	return &mongoCheckoutRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(mongotx.CheckoutsCollection),
	}
}

func (r *mongoCheckoutRepository) Create(ctx context.Context, checkout *model.Checkout) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	checkout.CreatedAt = now
	checkout.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, checkout); err != nil {
		return fmt.Errorf("failed to create checkout: %w", err)
	}
	return nil
}

func (r *mongoCheckoutRepository) findOne(ctx context.Context, filter bson.M) (*model.Checkout, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var checkout model.Checkout
	if err := r.collection.FindOne(ctx, filter).Decode(&checkout); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrCheckoutNotFound
		}
		return nil, fmt.Errorf("failed to find checkout: %w", err)
	}
	return &checkout, nil
}

func (r *mongoCheckoutRepository) FindByID(ctx context.Context, id string) (*model.Checkout, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCheckoutRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Checkout, error) {
	return r.findOne(ctx, bson.M{"payment_order_id": orderID})
}

// TransitionUpdate builds the $set for moving a checkout to status to.
func TransitionUpdate(to string, t Transition, now time.Time) bson.M {
	set := bson.M{"status": to, "updated_at": now}
	if t.PaymentID != "" {
		set["payment_id"] = t.PaymentID
	}
	if t.BookingID != "" {
		set["booking_id"] = t.BookingID
	}
	if t.FailureReason != "" {
		set["failure_reason"] = t.FailureReason
	}
	return bson.M{"$set": set}
}

func (r *mongoCheckoutRepository) Transition(ctx context.Context, id string, from, to string, t Transition) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := TransitionUpdate(to, t, time.Now().UTC().Truncate(time.Millisecond))

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update checkout: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s is not %s", bookingserrors.ErrStatusChanged, id, from)
	}
	return nil
}

func (r *mongoCheckoutRepository) FindStale(ctx context.Context, status string, timeField string, cutoff time.Time, limit int) ([]*model.Checkout, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": status, timeField: bson.M{"$lt": cutoff}}
	opts := options.Find().SetSort(bson.D{{Key: timeField, Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale checkouts: %w", err)
	}
	defer cursor.Close(ctx)

	checkouts := []*model.Checkout{}
	if err := cursor.All(ctx, &checkouts); err != nil {
		return nil, fmt.Errorf("failed to decode checkouts: %w", err)
	}
	return checkouts, nil
}
