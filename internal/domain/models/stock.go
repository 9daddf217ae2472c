package models

import "github.com/shopspring/decimal"

// StockSnapshot is a point-in-time copy of the cumulative stock account.
type StockSnapshot struct {
	InitialStock decimal.Decimal            `json:"initial_stock"`
	Balances     map[string]decimal.Decimal `json:"balances"`
	// Current is the balance of the latest stored date, or the initial stock.
	Current decimal.Decimal `json:"current"`
	// CumulativeSum adds every stored cumulative balance together.
	CumulativeSum decimal.Decimal `json:"cumulative_sum"`
}
