package models

import "time"

// HistoryRecord is the analytics trace of one optimization call.
type HistoryRecord struct {
	ID                   string    `json:"id" bson:"id"`
	RequestHash          string    `json:"request_hash" bson:"request_hash"`
	UserID               string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	SearchTypes          []string  `json:"search_types" bson:"search_types"`
	DestinationCount     int       `json:"destination_count" bson:"destination_count"`
	ItinerariesGenerated int       `json:"itineraries_generated" bson:"itineraries_generated"`
	BestCost             *float64  `json:"best_cost,omitempty" bson:"best_cost,omitempty"`
	Currency             string    `json:"currency" bson:"currency"`
	ProcessingTimeMS     int64     `json:"processing_time_ms" bson:"processing_time_ms"`
	CacheHit             bool      `json:"cache_hit" bson:"cache_hit"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
}
