package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	HotelsCollectionName       = "hotels"
	PriceHistoryCollectionName = "price_history"
	HistoryCollectionName      = "optimization_history"
)

var (
	HotelsCollection       *mongo.Collection
	PriceHistoryCollection *mongo.Collection
	HistoryCollection      *mongo.Collection
	Client                 *mongo.Client
)

// Connect dials MongoDB, checks the primary is reachable and binds the
// package collections to database dbName.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	database := client.Database(dbName)
	HotelsCollection = database.Collection(HotelsCollectionName)
	PriceHistoryCollection = database.Collection(PriceHistoryCollectionName)
	HistoryCollection = database.Collection(HistoryCollectionName)
	Client = client

	log.Printf("[db] connected to %s, database %q", uri, dbName)
	return client, nil
}

// Disconnect closes the shared client, if any.
func Disconnect(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("[db] disconnect: %v", err)
	}
}
