// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"
	"time"

	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotsCollection string = "snapshots"

type snapshotRepository struct {
	db *mongo.Database
}

var _ eventstore.SnapshotRepository = (*snapshotRepository)(nil)

// NewSnapshotRepository instantiates a MongoDB implementation of the snapshot
// store.
func NewSnapshotRepository(db *mongo.Database) eventstore.SnapshotRepository {
	return &snapshotRepository{
		db: db,
	}
}

// dbThing is the stored form of a thing. Document fields are kept as JSON
// text, the bookkeeping fields are native so they stay filterable.
type dbThing struct {
	ID            string    `bson:"id" json:"id"`
	SchemaVersion int       `bson:"schemaversion" json:"schema_version"`
	Lifecycle     string    `bson:"lifecycle" json:"lifecycle"`
	Revision      uint64    `bson:"revision" json:"revision"`
	Created       time.Time `bson:"created" json:"created"`
	Modified      time.Time `bson:"modified" json:"modified"`
	Document      string    `bson:"document" json:"document"`
}

func (sr *snapshotRepository) Save(ctx context.Context, th things.Thing) error {
	coll := sr.db.Collection(snapshotsCollection)
	stored := toDBThing(th)

	filter := bson.M{"id": th.ID}
	update := bson.M{"$set": stored}
	opts := options.Update().SetUpsert(true)
	if _, err := coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return errors.Wrap(errors.ErrCreateEntity, err)
	}

	return nil
}

func (sr *snapshotRepository) RetrieveByID(ctx context.Context, thingID string) (things.Thing, error) {
	coll := sr.db.Collection(snapshotsCollection)

	var dbt dbThing
	filter := bson.M{"id": thingID}
	if err := coll.FindOne(ctx, filter).Decode(&dbt); err != nil {
		if err == mongo.ErrNoDocuments {
			return things.Thing{}, errors.ErrNotFound
		}
		return things.Thing{}, errors.Wrap(errors.ErrViewEntity, err)
	}

	return toThing(dbt)
}

func toDBThing(th things.Thing) dbThing {
	doc, err := th.ToJSON(th.SchemaVersion)
	if err != nil {
		doc = []byte("{}")
	}

	return dbThing{
		ID:            th.ID,
		SchemaVersion: int(th.SchemaVersion),
		Lifecycle:     string(th.Lifecycle),
		Revision:      th.Revision,
		Created:       th.Created,
		Modified:      th.Modified,
		Document:      string(doc),
	}
}

func toThing(dbt dbThing) (things.Thing, error) {
	th, err := things.FromJSON([]byte(dbt.Document))
	if err != nil {
		return things.Thing{}, err
	}

	th.ID = dbt.ID
	th.SchemaVersion = things.SchemaVersion(dbt.SchemaVersion)
	th.Lifecycle = things.Lifecycle(dbt.Lifecycle)
	th.Revision = dbt.Revision
	th.Created = dbt.Created
	th.Modified = dbt.Modified

	return th, nil
}
