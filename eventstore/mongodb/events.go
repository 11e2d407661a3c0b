// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mongodb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/registry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	eventsCollection string = "events"
	thingid          string = "thingid"
	revision         string = "revision"
)

type eventRepository struct {
	db *mongo.Database
}

var _ eventstore.EventRepository = (*eventRepository)(nil)

// NewEventRepository instantiates a MongoDB implementation of the event log.
func NewEventRepository(db *mongo.Database) eventstore.EventRepository {
	return &eventRepository{
		db: db,
	}
}

// dbEvent is the stored form of an event. The value and the entity are kept
// as JSON text so the document round-trips without BSON type drift.
type dbEvent struct {
	ID            string    `bson:"id"`
	Kind          string    `bson:"kind"`
	ThingID       string    `bson:"thingid"`
	Revision      uint64    `bson:"revision"`
	Timestamp     time.Time `bson:"timestamp"`
	CorrelationID string    `bson:"correlationid,omitempty"`
	Path          string    `bson:"path,omitempty"`
	Value         string    `bson:"value,omitempty"`
	Thing         string    `bson:"thing,omitempty"`
}

func (er *eventRepository) Save(ctx context.Context, event registry.Event) error {
	dbe, err := toDBEvent(event)
	if err != nil {
		return errors.Wrap(errors.ErrPersistEvent, err)
	}

	coll := er.db.Collection(eventsCollection)
	if _, err := coll.InsertOne(ctx, dbe); err != nil {
		return errors.Wrap(errors.ErrPersistEvent, err)
	}

	return nil
}

func (er *eventRepository) RetrieveSince(ctx context.Context, thingID string, fromRevision uint64) ([]registry.Event, error) {
	coll := er.db.Collection(eventsCollection)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: revision, Value: 1}})

	filter := bson.M{thingid: thingID, revision: bson.M{"$gt": fromRevision}}
	cur, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrViewEntity, err)
	}
	defer cur.Close(ctx)

	var events []registry.Event
	for cur.Next(ctx) {
		var dbe dbEvent
		if err := cur.Decode(&dbe); err != nil {
			return nil, errors.Wrap(errors.ErrViewEntity, err)
		}
		event, err := toEvent(dbe)
		if err != nil {
			return nil, errors.Wrap(errors.ErrViewEntity, err)
		}
		events = append(events, event)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrViewEntity, err)
	}

	return events, nil
}

func (er *eventRepository) Count(ctx context.Context, thingID string) (uint64, error) {
	coll := er.db.Collection(eventsCollection)

	findOptions := options.FindOne()
	findOptions.SetSort(bson.D{{Key: revision, Value: -1}})

	var dbe dbEvent
	err := coll.FindOne(ctx, bson.M{thingid: thingID}, findOptions).Decode(&dbe)
	switch err {
	case nil:
		return dbe.Revision, nil
	case mongo.ErrNoDocuments:
		return 0, nil
	default:
		return 0, errors.Wrap(errors.ErrViewEntity, err)
	}
}

func toDBEvent(event registry.Event) (dbEvent, error) {
	dbe := dbEvent{
		ID:            event.ID,
		Kind:          string(event.Kind),
		ThingID:       event.ThingID,
		Revision:      event.Revision,
		Timestamp:     event.Timestamp,
		CorrelationID: event.CorrelationID,
		Path:          event.Path,
	}
	if event.Value != nil {
		b, err := json.Marshal(event.Value)
		if err != nil {
			return dbEvent{}, err
		}
		dbe.Value = string(b)
	}
	if event.Thing != nil {
		b, err := json.Marshal(toDBThing(*event.Thing))
		if err != nil {
			return dbEvent{}, err
		}
		dbe.Thing = string(b)
	}

	return dbe, nil
}

func toEvent(dbe dbEvent) (registry.Event, error) {
	event := registry.Event{
		ID:            dbe.ID,
		Kind:          registry.EventKind(dbe.Kind),
		ThingID:       dbe.ThingID,
		Revision:      dbe.Revision,
		Timestamp:     dbe.Timestamp,
		CorrelationID: dbe.CorrelationID,
		Path:          dbe.Path,
	}
	if dbe.Value != "" {
		var value any
		if err := json.Unmarshal([]byte(dbe.Value), &value); err != nil {
			return registry.Event{}, err
		}
		event.Value = value
	}
	if dbe.Thing != "" {
		var dbt dbThing
		if err := json.Unmarshal([]byte(dbe.Thing), &dbt); err != nil {
			return registry.Event{}, err
		}
		th, err := toThing(dbt)
		if err != nil {
			return registry.Event{}, err
		}
		event.Thing = &th
	}

	return event, nil
}
