package models

import "time"

// BalanceSnapshot is the weekly copy of the feed balance stored in MongoDB.
type BalanceSnapshot struct {
	ID          string                  `bson:"_id" json:"id"`
	Date        time.Time               `bson:"date" json:"date"`
	NeededStock NeededStockReport       `bson:"needed_stock" json:"neededStock"`
	Balance     ProductionBalanceReport `bson:"balance" json:"balance"`
	CreatedAt   time.Time               `bson:"created_at" json:"createdAt"`
}
