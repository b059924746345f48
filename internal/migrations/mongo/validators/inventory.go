package validators

import "go.mongodb.org/mongo-driver/bson"

var seatSchema = bson.M{
	"bsonType": "object",
	"required": []string{"seat_number", "status"},
	"properties": bson.M{
		"seat_number": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 8},
		"position":    bson.M{"enum": []string{"window", "aisle", "middle"}},
		"status":      bson.M{"enum": []string{"", "available", "reserved"}},
		"booking_ref": bson.M{"bsonType": "string"},
		"occupant": bson.M{
			"bsonType": "object",
			"required": []string{"name"},
			"properties": bson.M{
				"name":  bson.M{"bsonType": "string"},
				"email": bson.M{"bsonType": "string"},
			},
		},
	},
}

var InventoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"mode",
			"number",
			"operator",
			"owner_uid",
			"source",
			"destination",
			"departure_time",
			"arrival_time",
			"fare_classes",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"mode": bson.M{
				"enum": []string{"flight", "train", "bus"},
			},

			"number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 16,
			},

			"operator": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"source":      endpointSchema,
			"destination": endpointSchema,

			"departure_time": bson.M{"bsonType": "date"},
			"arrival_time":   bson.M{"bsonType": "date"},

			"status": bson.M{
				"enum": []string{"", "on_time", "delayed", "cancelled", "boarding"},
			},

			"fare_classes": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 10,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"class_type", "ticket_price", "seats"},
					"properties": bson.M{
						"class_type":   bson.M{"bsonType": "string", "minLength": 2, "maxLength": 40},
						"ticket_price": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 10000000},
						"seats": bson.M{
							"bsonType": "array",
							"minItems": 1,
							"maxItems": 1000,
							"items":    seatSchema,
						},
					},
				},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
			},
		},
	},
}
