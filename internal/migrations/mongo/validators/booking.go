package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = bson.A{"int", "long"}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_id",
			"check_in",
			"check_out",
			"adults",
			"guest_name",
			"guest_email",
			"nights",
			"room_rate",
			"total_price",
			"currency",
			"status",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"package_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"adults": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},

			"children": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"guest_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"guest_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"nights": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},

			"room_rate": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"package_rate": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"total_price": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"unpaid",
					"paid",
					"refunded",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
