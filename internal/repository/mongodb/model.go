package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reportDocument struct {
	GeneratedAt   time.Time                       `bson:"generated_at"`
	Days          []dayDocument                   `bson:"days"`
	Alerts        []alertDocument                 `bson:"alerts"`
	InitialStock  primitive.Decimal128            `bson:"initial_stock"`
	Balances      map[string]primitive.Decimal128 `bson:"balances"`
	CurrentStock  primitive.Decimal128            `bson:"current_stock"`
	CumulativeSum primitive.Decimal128            `bson:"cumulative_sum"`
	CreatedAt     time.Time                       `bson:"created_at"`
}

type dayDocument struct {
	Date              string               `bson:"date"`
	TotalProductionKg primitive.Decimal128 `bson:"total_production"`
	PackagingRequired primitive.Decimal128 `bson:"packaging_required"`
	PackagingUsed     int64                `bson:"packaging_used"`
	WasteKg           primitive.Decimal128 `bson:"waste_kg"`
}

type alertDocument struct {
	Date      string               `bson:"date"`
	Kind      string               `bson:"kind"`
	Kilograms primitive.Decimal128 `bson:"kilograms"`
	Message   string               `bson:"message"`
}
