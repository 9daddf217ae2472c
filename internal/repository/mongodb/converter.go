package mongodb

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/packline/internal/domain/models"
)

func documentFromReport(report models.ReconciliationReport, createdAt time.Time) (*reportDocument, error) {
	doc := &reportDocument{
		GeneratedAt: report.GeneratedAt,
		Days:        make([]dayDocument, 0, len(report.Days)),
		Alerts:      make([]alertDocument, 0, len(report.Alerts)),
		Balances:    make(map[string]primitive.Decimal128, len(report.Stock.Balances)),
		CreatedAt:   createdAt,
	}

	var err error
	if doc.InitialStock, err = toDecimal128(report.Stock.InitialStock); err != nil {
		return nil, fmt.Errorf("initial stock: %w", err)
	}
	if doc.CurrentStock, err = toDecimal128(report.Stock.Current); err != nil {
		return nil, fmt.Errorf("current stock: %w", err)
	}
	if doc.CumulativeSum, err = toDecimal128(report.Stock.CumulativeSum); err != nil {
		return nil, fmt.Errorf("cumulative sum: %w", err)
	}

	for date, balance := range report.Stock.Balances {
		if doc.Balances[date], err = toDecimal128(balance); err != nil {
			return nil, fmt.Errorf("balance %s: %w", date, err)
		}
	}

	for _, day := range report.Days {
		d := dayDocument{Date: day.Date, PackagingUsed: day.PackagingUsed}
		if d.TotalProductionKg, err = toDecimal128(day.TotalProductionKg); err != nil {
			return nil, fmt.Errorf("production %s: %w", day.Date, err)
		}
		if d.PackagingRequired, err = toDecimal128(day.PackagingRequired); err != nil {
			return nil, fmt.Errorf("packaging required %s: %w", day.Date, err)
		}
		if d.WasteKg, err = toDecimal128(day.WasteKg); err != nil {
			return nil, fmt.Errorf("waste %s: %w", day.Date, err)
		}
		doc.Days = append(doc.Days, d)
	}

	for _, alert := range report.Alerts {
		a := alertDocument{Date: alert.Date, Kind: string(alert.Kind), Message: alert.Message}
		if a.Kilograms, err = toDecimal128(alert.Kilograms); err != nil {
			return nil, fmt.Errorf("alert %s: %w", alert.Date, err)
		}
		doc.Alerts = append(doc.Alerts, a)
	}

	return doc, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}
