package repository

import (
	"context"
	"fmt"

	inventoryerrors "travelpartner/internal/inventory/errors"
	mongotx "travelpartner/pkg/db/mongo"
	"travelpartner/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeatRepository mutates individual seats. Every write is a single
// conditional update on the addressed seats, so concurrent writers touching
// disjoint seats of one item never overwrite each other.
type SeatRepository interface {
	ReserveSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string, occupants map[string]model.Occupant) error
	ReleaseSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string) (int64, error)
	FindWithReservedSeats(ctx context.Context) ([]*model.InventoryItem, error)
}

// ReserveFilter matches the item only when every seat in seats exists in the
// class and is either available or already held by bookingRef.
func ReserveFilter(oid any, fareClass string, seats []string, bookingRef string) bson.M {
	conditions := make(bson.A, 0, len(seats))
	for _, n := range seats {
		conditions = append(conditions, bson.M{"$elemMatch": bson.M{
			"seat_number": n,
			"$or": bson.A{
				bson.M{"status": model.SeatAvailable},
				bson.M{"booking_ref": bookingRef},
			},
		}})
	}
	return bson.M{
		"_id": oid,
		"fare_classes": bson.M{"$elemMatch": bson.M{
			"class_type": fareClass,
			"seats":      bson.M{"$all": conditions},
		}},
	}
}

// ReserveUpdate sets every seat through its own array filter so each seat
// gets its own occupant.
func ReserveUpdate(fareClass string, seats []string, bookingRef string, occupants map[string]model.Occupant) (bson.M, []any) {
	set := bson.M{}
	filters := []any{bson.M{"c.class_type": fareClass}}
	for i, n := range seats {
		id := fmt.Sprintf("s%d", i)
		path := "fare_classes.$[c].seats.$[" + id + "]."
		set[path+"status"] = model.SeatReserved
		set[path+"booking_ref"] = bookingRef
		if occ, ok := occupants[n]; ok {
			set[path+"occupant"] = occ
		}
		filters = append(filters, bson.M{id + ".seat_number": n})
	}
	return bson.M{"$set": set, "$inc": bson.M{"version": 1}}, filters
}

func (r *mongoInventoryRepository) ReserveSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string, occupants map[string]model.Occupant) error {
	if len(seats) == 0 {
		return nil
	}
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(inventoryID)
	if err != nil {
		return err
	}

	update, arrayFilters := ReserveUpdate(fareClass, seats, bookingRef, occupants)
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})

	result, err := r.collection.UpdateOne(ctx, ReserveFilter(oid, fareClass, seats, bookingRef), update, opts)
	if err != nil {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	item, err := r.FindByID(ctx, inventoryID)
	if err != nil {
		return err
	}
	fc := item.FareClass(fareClass)
	if fc == nil {
		return fmt.Errorf("%w: %s", inventoryerrors.ErrFareClassNotFound, fareClass)
	}
	return &inventoryerrors.SeatConflictError{Seats: ConflictingSeats(fc, seats, bookingRef)}
}

// ConflictingSeats lists the seats bookingRef cannot take: unknown seats and
// seats reserved for someone else.
func ConflictingSeats(fc *model.FareClass, seats []string, bookingRef string) []string {
	var out []string
	for _, n := range seats {
		s := fc.FindSeat(n)
		if s == nil || (s.IsReserved() && s.BookingRef != bookingRef) {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		// The item changed between the update and the read.
		out = append(out, seats...)
	}
	return out
}

// ReleaseFilter selects the reserved seats in seats that belong to bookingRef
// or carry no attribution at all.
func ReleaseFilter(seats []string, bookingRef string) bson.M {
	return bson.M{
		"s.seat_number": bson.M{"$in": seats},
		"s.status":      model.SeatReserved,
		"$or": bson.A{
			bson.M{"s.booking_ref": bookingRef},
			bson.M{"s.booking_ref": bson.M{"$exists": false}},
		},
	}
}

func (r *mongoInventoryRepository) ReleaseSeats(ctx context.Context, inventoryID, fareClass string, seats []string, bookingRef string) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(inventoryID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{"_id": oid, "fare_classes.class_type": fareClass}
	update := bson.M{
		"$set":   bson.M{"fare_classes.$[c].seats.$[s].status": model.SeatAvailable},
		"$unset": bson.M{"fare_classes.$[c].seats.$[s].occupant": "", "fare_classes.$[c].seats.$[s].booking_ref": ""},
		"$inc":   bson.M{"version": 1},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: []any{
		bson.M{"c.class_type": fareClass},
		ReleaseFilter(seats, bookingRef),
	}})

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to release seats: %w", err)
	}
	if result.MatchedCount == 0 {
		return 0, fmt.Errorf("%w: %s", inventoryerrors.ErrNotFound, inventoryID)
	}
	return result.ModifiedCount, nil
}

func (r *mongoInventoryRepository) FindWithReservedSeats(ctx context.Context) ([]*model.InventoryItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"fare_classes.seats.status": model.SeatReserved})
	if err != nil {
		return nil, fmt.Errorf("failed to query reserved inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.InventoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode reserved inventory: %w", err)
	}
	return items, nil
}
