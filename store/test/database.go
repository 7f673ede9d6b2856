package test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medisys-health/diagnostics/test"
)

const (
	mongoTestHost = "mongodb://127.0.0.1:27017"
	mongoTimeout  = time.Second * 5
)

var (
	database *mongo.Database
)

// SetupDatabase connects to a local mongod and skips the suite when none is reachable
func SetupDatabase() {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoTestHost).SetServerSelectionTimeout(mongoTimeout))
	Expect(err).ToNot(HaveOccurred())

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		Skip(fmt.Sprintf("mongo is not reachable at %s: %v", mongoTestHost, err))
	}

	databaseName := fmt.Sprintf("diagnostics_test_%s_%d", test.Faker.Lorem().Word(), GinkgoParallelProcess())
	database = client.Database(databaseName)
}

func TeardownDatabase() {
	if database == nil {
		return
	}
	err := database.Drop(context.Background())
	Expect(err).ToNot(HaveOccurred())

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	Expect(database.Client().Disconnect(ctx)).ToNot(HaveOccurred())
	database = nil
}

func GetTestDatabase() *mongo.Database {
	Expect(database).ToNot(BeNil())
	return database
}
