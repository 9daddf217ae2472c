package models

import "time"

// ReconciliationReport is what operators receive when they request a report.
type ReconciliationReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Days        []WasteEntry  `json:"days"`
	Alerts      []Alert       `json:"alerts"`
	Stock       StockSnapshot `json:"stock"`
}
