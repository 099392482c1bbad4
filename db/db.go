package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	TripsCollection      *mongo.Collection
	PlacesCollection     *mongo.Collection
	TransportsCollection *mongo.Collection
	DayPlansCollection   *mongo.Collection
	PackingCollection    *mongo.Collection
	Client               *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("tripdb")
	TripsCollection = database.Collection("trips")
	PlacesCollection = database.Collection("places")
	TransportsCollection = database.Collection("transports")
	DayPlansCollection = database.Collection("dayplans")
	PackingCollection = database.Collection("packing")
}
