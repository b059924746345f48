package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "travelpartner/internal/inventory/errors"
	"travelpartner/pkg/config"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// prefixCeiling closes a lexicographic prefix range on a string index.
const prefixCeiling = "\uf8ff"

type mongoInventoryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, id string) (*model.InventoryItem, error)
	FindByNumber(ctx context.Context, mode, number string) (*model.InventoryItem, error)
	FindAll(ctx context.Context, mode string, limit int, offset int64) ([]*model.InventoryItem, error)
	Count(ctx context.Context, mode string) (int64, error)
	Search(ctx context.Context, q model.SearchQuery) ([]*model.InventoryItem, error)
	UpdateStatus(ctx context.Context, id string, update *model.InventoryStatusUpdate) error
	DeleteUnreserved(ctx context.Context, id string) error

	SeatRepository

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoInventoryRepository(cfg *config.Config) InventoryRepository {
	return &mongoInventoryRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(mongotx.InventoryCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", inventoryerrors.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *mongoInventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	item.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	item.Version = 0
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}

	return nil
}

func (r *mongoInventoryRepository) FindByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var item model.InventoryItem
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", inventoryerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find inventory item: %w", err)
	}
	return &item, nil
}

// FindByNumber resolves bookings written before inventory ids were recorded.
// When several departures share a number the earliest is returned.
func (r *mongoInventoryRepository) FindByNumber(ctx context.Context, mode, number string) (*model.InventoryItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"number": number}
	if mode != "" {
		filter["mode"] = mode
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "departure_time", Value: 1}})

	var item model.InventoryItem
	err := r.collection.FindOne(ctx, filter, opts).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: number %s", inventoryerrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find inventory item by number: %w", err)
	}
	return &item, nil
}

func modeFilter(mode string) bson.M {
	if mode == "" {
		return bson.M{}
	}
	return bson.M{"mode": mode}
}

func (r *mongoInventoryRepository) FindAll(ctx context.Context, mode string, limit int, offset int64) ([]*model.InventoryItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "departure_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, modeFilter(mode), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.InventoryItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}

	return items, nil
}

func (r *mongoInventoryRepository) Count(ctx context.Context, mode string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, modeFilter(mode))
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return count, nil
}

// SearchFilter builds the query for q. City keys match as prefixes, the fare
// class exactly, and the date as one UTC day of departures.
func SearchFilter(q model.SearchQuery) bson.M {
	filter := bson.M{"mode": q.Mode}
	if q.FromKey != "" {
		filter["source.city_key"] = bson.M{"$gte": q.FromKey, "$lte": q.FromKey + prefixCeiling}
	}
	if q.ToKey != "" {
		filter["destination.city_key"] = bson.M{"$gte": q.ToKey, "$lte": q.ToKey + prefixCeiling}
	}
	if q.FareClass != "" {
		filter["fare_classes.class_type"] = q.FareClass
	}
	if q.Date != nil {
		y, m, d := q.Date.UTC().Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		filter["departure_time"] = bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)}
	}
	return filter
}

func (r *mongoInventoryRepository) Search(ctx context.Context, q model.SearchQuery) ([]*model.InventoryItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "departure_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, SearchFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.InventoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return items, nil
}

func (r *mongoInventoryRepository) UpdateStatus(ctx context.Context, id string, update *model.InventoryStatusUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"status": update.Status}
	if update.Gate != "" {
		set["gate"] = update.Gate
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update inventory status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrNotFound, id)
	}
	return nil
}

// DeleteUnreserved removes the item only while none of its seats is reserved.
func (r *mongoInventoryRepository) DeleteUnreserved(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":                      oid,
		"fare_classes.seats.status": bson.M{"$ne": model.SeatReserved},
	}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if result.DeletedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("failed to check inventory item: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrHasReservations, id)
		}
		return fmt.Errorf("%w: %s", inventoryerrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoInventoryRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
