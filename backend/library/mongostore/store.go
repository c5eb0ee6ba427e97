// Package mongostore keeps plans in MongoDB, one collection per entity kind.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"mealprep/backend/library/ledger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	componentsCollection = "components"
	slotsCollection      = "meal_slots"
	favoritesCollection  = "favorite_meals"
)

type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	ownClient bool
}

// Connect dials uri, checks the server is reachable and prepares the indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := New(client.Database(database))
	s.ownClient = true
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle; Close leaves its client alone.
func New(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	byOwner := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}}
	for _, name := range []string{componentsCollection, favoritesCollection} {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, byOwner); err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	byDate := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}}
	if _, err := s.db.Collection(slotsCollection).Indexes().CreateOne(ctx, byDate); err != nil {
		return fmt.Errorf("index %s: %w", slotsCollection, err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if !s.ownClient {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type componentDoc struct {
	ID                string             `bson:"_id"`
	UserID            string             `bson:"user_id"`
	Name              string             `bson:"name"`
	TotalServings     int                `bson:"total_servings"`
	AvailableServings int                `bson:"available_servings"`
	Version           int64              `bson:"version"`
	CreatedAt         primitive.DateTime `bson:"created_at"`
	UpdatedAt         primitive.DateTime `bson:"updated_at"`
}

func (d componentDoc) toLedger() ledger.Component {
	return ledger.Component{
		ID:                d.ID,
		UserID:            d.UserID,
		Name:              d.Name,
		TotalServings:     d.TotalServings,
		AvailableServings: d.AvailableServings,
		Version:           d.Version,
	}
}

type slotDoc struct {
	ID         string             `bson:"_id"`
	UserID     string             `bson:"user_id"`
	Date       string             `bson:"date"`
	MealType   string             `bson:"meal_type"`
	Name       string             `bson:"name"`
	Notes      string             `bson:"notes"`
	Favorite   bool               `bson:"favorite"`
	Components []string           `bson:"components"`
	Toppings   []string           `bson:"toppings"`
	Version    int64              `bson:"version"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
	UpdatedAt  primitive.DateTime `bson:"updated_at"`
}

func (d slotDoc) toLedger() ledger.MealSlot {
	return ledger.MealSlot{
		ID:         d.ID,
		UserID:     d.UserID,
		Date:       d.Date,
		MealType:   d.MealType,
		Name:       d.Name,
		Notes:      d.Notes,
		Favorite:   d.Favorite,
		Components: nonNil(d.Components),
		Toppings:   nonNil(d.Toppings),
		Version:    d.Version,
	}
}

type favoriteDoc struct {
	ID         string             `bson:"_id"`
	UserID     string             `bson:"user_id"`
	Name       string             `bson:"name"`
	Notes      string             `bson:"notes"`
	Components []string           `bson:"components"`
	Toppings   []string           `bson:"toppings"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
	UpdatedAt  primitive.DateTime `bson:"updated_at"`
}

func (d favoriteDoc) toLedger() ledger.FavoriteMeal {
	return ledger.FavoriteMeal{
		ID:         d.ID,
		UserID:     d.UserID,
		Name:       d.Name,
		Notes:      d.Notes,
		Components: nonNil(d.Components),
		Toppings:   nonNil(d.Toppings),
	}
}

func (s *Store) ListComponents(ctx context.Context, userID string) ([]ledger.Component, error) {
	var docs []componentDoc
	if err := s.find(ctx, componentsCollection, bson.M{"user_id": userID}, &docs); err != nil {
		return nil, err
	}
	out := make([]ledger.Component, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toLedger())
	}
	return out, nil
}

func (s *Store) UpsertComponent(ctx context.Context, c ledger.Component) (ledger.Component, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	doc := componentDoc{
		ID:                c.ID,
		UserID:            c.UserID,
		Name:              c.Name,
		TotalServings:     c.TotalServings,
		AvailableServings: c.AvailableServings,
		Version:           c.Version + 1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	set := bson.M{
		"name":               doc.Name,
		"total_servings":     doc.TotalServings,
		"available_servings": doc.AvailableServings,
		"version":            doc.Version,
		"updated_at":         now,
	}
	if err := s.write(ctx, componentsCollection, "component", c.ID, c.UserID, c.Version, doc, set); err != nil {
		return ledger.Component{}, err
	}
	return doc.toLedger(), nil
}

func (s *Store) DeleteComponent(ctx context.Context, userID, id string) error {
	return s.delete(ctx, componentsCollection, "component", userID, id, ledger.ErrComponentNotFound)
}

func (s *Store) ListMealSlots(ctx context.Context, userID, from, to string) ([]ledger.MealSlot, error) {
	filter := bson.M{"user_id": userID, "date": bson.M{"$gte": from, "$lte": to}}
	var docs []slotDoc
	if err := s.find(ctx, slotsCollection, filter, &docs); err != nil {
		return nil, err
	}
	out := make([]ledger.MealSlot, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toLedger())
	}
	return out, nil
}

func (s *Store) UpsertMealSlot(ctx context.Context, m ledger.MealSlot) (ledger.MealSlot, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	doc := slotDoc{
		ID:         m.ID,
		UserID:     m.UserID,
		Date:       m.Date,
		MealType:   m.MealType,
		Name:       m.Name,
		Notes:      m.Notes,
		Favorite:   m.Favorite,
		Components: nonNil(m.Components),
		Toppings:   nonNil(m.Toppings),
		Version:    m.Version + 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	set := bson.M{
		"date":       doc.Date,
		"meal_type":  doc.MealType,
		"name":       doc.Name,
		"notes":      doc.Notes,
		"favorite":   doc.Favorite,
		"components": doc.Components,
		"toppings":   doc.Toppings,
		"version":    doc.Version,
		"updated_at": now,
	}
	if err := s.write(ctx, slotsCollection, "slot", m.ID, m.UserID, m.Version, doc, set); err != nil {
		return ledger.MealSlot{}, err
	}
	return doc.toLedger(), nil
}

func (s *Store) DeleteMealSlot(ctx context.Context, userID, id string) error {
	return s.delete(ctx, slotsCollection, "slot", userID, id, ledger.ErrSlotNotFound)
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]ledger.FavoriteMeal, error) {
	var docs []favoriteDoc
	if err := s.find(ctx, favoritesCollection, bson.M{"user_id": userID}, &docs); err != nil {
		return nil, err
	}
	out := make([]ledger.FavoriteMeal, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toLedger())
	}
	return out, nil
}

func (s *Store) UpsertFavorite(ctx context.Context, f ledger.FavoriteMeal) (ledger.FavoriteMeal, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	update := bson.M{
		"$set": bson.M{
			"name":       f.Name,
			"notes":      f.Notes,
			"components": nonNil(f.Components),
			"toppings":   nonNil(f.Toppings),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"user_id": f.UserID, "created_at": now},
	}
	_, err := s.db.Collection(favoritesCollection).UpdateOne(ctx,
		bson.M{"_id": f.ID, "user_id": f.UserID}, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// the id exists under another owner
		return ledger.FavoriteMeal{}, fmt.Errorf("favorite %q: %w", f.ID, ledger.ErrNotFound)
	}
	if err != nil {
		return ledger.FavoriteMeal{}, fmt.Errorf("save favorite: %w", err)
	}
	f.Components = nonNil(f.Components)
	f.Toppings = nonNil(f.Toppings)
	return f, nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, id string) error {
	return s.delete(ctx, favoritesCollection, "favorite", userID, id, ledger.ErrNotFound)
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// write inserts doc when version is 0 and otherwise applies set only if the
// stored version still equals version.
func (s *Store) write(ctx context.Context, collection, kind, id, userID string, version int64, doc any, set bson.M) error {
	coll := s.db.Collection(collection)
	if version == 0 {
		_, err := coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s %q already exists: %w", kind, id, ledger.ErrConcurrentModification)
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", kind, err)
		}
		return nil
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID, "version": version}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %q is not at version %d: %w", kind, id, version, ledger.ErrConcurrentModification)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, collection, kind, userID, id string, notFound error) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, notFound)
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
