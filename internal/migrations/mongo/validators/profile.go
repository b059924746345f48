package validators

import "go.mongodb.org/mongo-driver/bson"

// ProfileValidator keeps business details present exactly on business
// accounts.
var ProfileValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "account_type", "email", "name", "registered_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"account_type": bson.M{
				"enum": []string{"user", "business"},
			},
			"email": bson.M{"bsonType": "string"},
			"name":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"phone": bson.M{"bsonType": "string", "pattern": `^\+[1-9]\d{1,14}$`},
			"business": bson.M{
				"bsonType": "object",
				"required": []string{"business_name", "services"},
				"properties": bson.M{
					"business_name": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
					"services": bson.M{
						"bsonType": "array",
						"minItems": 1,
						"maxItems": 3,
						"items":    bson.M{"enum": []string{"flight", "train", "bus"}},
					},
				},
			},
			"registered_at": bson.M{"bsonType": "date"},
		},

		"oneOf": bson.A{
			bson.M{
				"properties": bson.M{"account_type": bson.M{"enum": []string{"business"}}},
				"required":   []string{"business"},
			},
			bson.M{
				"properties": bson.M{"account_type": bson.M{"enum": []string{"user"}}},
				"not":        bson.M{"required": []string{"business"}},
			},
		},
	},
}
