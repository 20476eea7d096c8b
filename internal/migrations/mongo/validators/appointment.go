package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"first_name",
			"datetime",
			"end_datetime",
			"paid",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"customer_id": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 320,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"datetime": bson.M{
				"bsonType": "date",
			},

			"end_datetime": bson.M{
				"bsonType": "date",
			},

			"timezone": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},

			"duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"paid": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
