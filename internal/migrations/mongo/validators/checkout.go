package validators

import "go.mongodb.org/mongo-driver/bson"

var CheckoutValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_uid",
			"selection_id",
			"inventory_id",
			"fare_class",
			"seat_numbers",
			"passengers",
			"amount_minor",
			"payment_order_id",
			"status",
			"expires_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"seat_numbers": bson.M{
				"bsonType":    "array",
				"minItems":    1,
				"uniqueItems": true,
				"items":       bson.M{"bsonType": "string"},
			},

			"passengers": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    passengerSchema,
			},

			"amount_minor": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"enum": []string{"pending", "paid", "confirmed", "payment_failed", "conflicted", "expired"},
			},

			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

var ReconcileCaseValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"kind", "resolved", "created_at"},
		"properties": bson.M{
			"kind": bson.M{
				"enum": []string{"orphaned_reservation", "commit_failed", "stale_checkout"},
			},
			"seat_numbers": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},
			"resolved":   bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
