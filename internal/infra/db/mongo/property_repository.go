package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "glampstay/internal/domain/property"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	col := db.Collection("agg_property")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)})
	return &PropertyRepository{col: col}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) List(ctx context.Context, filter domainproperty.ListFilter) ([]*domainproperty.Property, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["active"] = true
	}
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []propertyDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainproperty.Property, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type propertyDocument struct {
	ID          string           `bson:"_id"`
	Slug        string           `bson:"slug"`
	Name        string           `bson:"name"`
	Kind        string           `bson:"kind"`
	Description string           `bson:"description"`
	Capacity    int              `bson:"capacity"`
	PetsAllowed bool             `bson:"pets_allowed"`
	Amenities   []string         `bson:"amenities"`
	Rates       rateCardDocument `bson:"rates"`
	Photos      []string         `bson:"photos"`
	Active      bool             `bson:"active"`
	CreatedAt   int64            `bson:"created_at"`
	UpdatedAt   int64            `bson:"updated_at"`
	Version     int64            `bson:"version"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:          string(p.ID),
		Slug:        p.Slug,
		Name:        p.Name,
		Kind:        string(p.Kind),
		Description: p.Description,
		Capacity:    p.Capacity,
		PetsAllowed: p.PetsAllowed,
		Amenities:   p.Amenities,
		Rates:       newRateCardDocument(p.Rates),
		Photos:      p.Photos,
		Active:      p.Active,
		CreatedAt:   timeToTimestamp(p.CreatedAt),
		UpdatedAt:   timeToTimestamp(p.UpdatedAt),
		Version:     p.Version,
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:          domainproperty.ID(d.ID),
		Slug:        d.Slug,
		Name:        d.Name,
		Kind:        domainproperty.Kind(d.Kind),
		Description: d.Description,
		Capacity:    d.Capacity,
		PetsAllowed: d.PetsAllowed,
		Amenities:   d.Amenities,
		Rates:       d.Rates.toRateCard(),
		Photos:      d.Photos,
		Active:      d.Active,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
