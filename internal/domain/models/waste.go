package models

import "github.com/shopspring/decimal"

// AlertKind classifies a reconciliation anomaly.
type AlertKind string

const (
	AlertWaste    AlertKind = "waste"
	AlertShortage AlertKind = "shortage"
)

// MachineOutput holds the packaging units consumed on one date by both machines.
// CounterA counts 500 g films and CounterB 250 g films.
type MachineOutput struct {
	Date     string `json:"date"`
	CounterA int64  `json:"counter_a"`
	CounterB int64  `json:"counter_b"`
}

// Units is the packaging-unit total used for reconciliation.
func (m MachineOutput) Units() int64 {
	return m.CounterA + m.CounterB
}

// WasteEntry is the reconciliation of one date.
type WasteEntry struct {
	Date              string          `json:"date"`
	TotalProductionKg decimal.Decimal `json:"total_production"`
	PackagingRequired decimal.Decimal `json:"packaging_required"`
	PackagingUsed     int64           `json:"packaging_used"`
	WasteKg           decimal.Decimal `json:"waste_kg"`
}

// Alert flags a date whose packaging consumption diverges from production.
type Alert struct {
	Date      string          `json:"date"`
	Kind      AlertKind       `json:"kind"`
	Kilograms decimal.Decimal `json:"kilograms"`
	Message   string          `json:"message"`
}

// WasteReport is the full output of one estimation run, entries ordered by date.
type WasteReport struct {
	Entries []WasteEntry `json:"days"`
	Alerts  []Alert      `json:"alerts"`
}
