package validators

import "go.mongodb.org/mongo-driver/bson"

var endpointSchema = bson.M{
	"bsonType": "object",
	"required": []string{"code", "name", "city"},
	"properties": bson.M{
		"code":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 8},
		"name":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 120},
		"city":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 80},
		"city_key": bson.M{"bsonType": "string"},
	},
}

var passengerSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name", "age", "gender", "seat_number"},
	"properties": bson.M{
		"name":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		"age":         bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 120},
		"gender":      bson.M{"enum": []string{"male", "female", "other"}},
		"seat_number": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 8},
	},
}

var purchaserSchema = bson.M{
	"bsonType": "object",
	"required": []string{"uid", "name", "email"},
	"properties": bson.M{
		"uid":   bson.M{"bsonType": "string", "minLength": 1},
		"name":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		"email": bson.M{"bsonType": "string"},
		"phone": bson.M{"bsonType": "string", "pattern": `^\+[1-9]\d{1,14}$`},
	},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"client_booking_id",
			"trip",
			"fare_class",
			"seat_numbers",
			"passengers",
			"purchaser",
			"amount_minor",
			"currency",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"client_booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"inventory_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"trip": bson.M{
				"bsonType": "object",
				"required": []string{"mode", "number", "source", "destination", "departure_time"},
				"properties": bson.M{
					"mode":           bson.M{"enum": []string{"flight", "train", "bus"}},
					"number":         bson.M{"bsonType": "string", "minLength": 2, "maxLength": 16},
					"source":         endpointSchema,
					"destination":    endpointSchema,
					"departure_time": bson.M{"bsonType": "date"},
					"arrival_time":   bson.M{"bsonType": "date"},
				},
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

			"purchaser": purchaserSchema,

			"meal_preference": bson.M{
				"enum": []string{"veg", "non_veg", "vegan", "jain", "none"},
			},

			"amount_minor": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
