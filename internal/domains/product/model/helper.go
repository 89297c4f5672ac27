package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToDecimal128 convert shopspring decimal sang bson Decimal128 để persist
func ToDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	parsed, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert decimal %s: %w", d, err)
	}
	return parsed, nil
}

// FromDecimal128 convert chiều ngược lại cho business logic
func FromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal128 %s: %w", d, err)
	}
	return parsed, nil
}
