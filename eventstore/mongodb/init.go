// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config defines the options that are used when connecting to a MongoDB instance.
type Config struct {
	Host string `env:"REGISTRY_DB_HOST" envDefault:"localhost"`
	Port string `env:"REGISTRY_DB_PORT" envDefault:"27017"`
	Name string `env:"REGISTRY_DB_NAME" envDefault:"registry"`
}

// Connect creates a connection to the MongoDB instance.
func Connect(ctx context.Context, cfg Config) (*mongo.Database, error) {
	addr := fmt.Sprintf("mongodb://%s:%s", cfg.Host, cfg.Port)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(addr))
	if err != nil {
		return nil, err
	}

	return client.Database(cfg.Name), nil
}
