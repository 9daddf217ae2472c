package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/packline/internal/domain/models"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Lets numeric tags such as min=0 run against decimal fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

type productRequest struct {
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price" validate:"min=0"`
	Ingredients []string        `json:"ingredients"`
}

type batchRequest struct {
	Product    productRequest   `json:"product"`
	QuantityKg *decimal.Decimal `json:"quantity_kg" validate:"required"`
	Date       string           `json:"date" validate:"required"`
}

func (r batchRequest) toModel() models.ProductionBatch {
	return models.ProductionBatch{
		Product: models.Product{
			Name:        r.Product.Name,
			Category:    r.Product.Category,
			UnitPrice:   r.Product.Price,
			Ingredients: r.Product.Ingredients,
		},
		QuantityKg: *r.QuantityKg,
		Date:       r.Date,
	}
}

type baselineRequest struct {
	InitialStockKg *decimal.Decimal `json:"initial_stock_kg" validate:"required"`
}

type machineOutputRequest struct {
	Date     string `json:"date" validate:"required"`
	CounterA *int64 `json:"counter_a" validate:"required"`
	CounterB *int64 `json:"counter_b" validate:"required"`
}

type stockResponse struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// fieldError turns the first struct validation failure into the domain
// validation error, so every 422 body has the same shape.
func fieldError(errs validator.ValidationErrors) *models.ValidationError {
	fe := errs[0]

	// Namespace is "<request type>.<json path>".
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "must be at least " + fe.Param()
	default:
		reason = "is invalid"
	}

	return models.NewValidationError(field, reason)
}
