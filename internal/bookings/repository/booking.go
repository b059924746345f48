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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	// Create inserts the booking. A second insert with the same client
	// booking id fails with ErrDuplicateBooking.
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByClientBookingID(ctx context.Context, clientBookingID string) (*model.Booking, error)
	FindByOwner(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, error)
	CountByOwner(ctx context.Context, uid string) (int64, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(mongotx.BookingsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func bookingObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

// bookingDocument renders booking with an ObjectID _id. A transaction retry
// calls Create again with the id the first attempt assigned, so that id is
// reused rather than stored as a string.
func bookingDocument(booking *model.Booking) (primitive.ObjectID, bson.D, error) {
	oid := primitive.NewObjectID()
	if booking.ID != "" {
		var err error
		if oid, err = bookingObjectID(booking.ID); err != nil {
			return primitive.NilObjectID, nil, err
		}
	}

	fields := *booking
	fields.ID = ""
	raw, err := bson.Marshal(&fields)
	if err != nil {
		return primitive.NilObjectID, nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	var rest bson.D
	if err := bson.Unmarshal(raw, &rest); err != nil {
		return primitive.NilObjectID, nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	return oid, append(bson.D{{Key: "_id", Value: oid}}, rest...), nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	oid, doc, err := bookingDocument(booking)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateBooking, booking.ClientBookingID)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = oid.Hex()
	return nil
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	oid, err := bookingObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoBookingRepository) FindByClientBookingID(ctx context.Context, clientBookingID string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{"client_booking_id": clientBookingID})
}

func (r *mongoBookingRepository) FindByOwner(ctx context.Context, uid string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"purchaser.uid": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByOwner(ctx context.Context, uid string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"purchaser.uid": uid})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := bookingObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
