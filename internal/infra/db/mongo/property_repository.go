package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/money"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("properties")}
}

func (r *PropertyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperty.Property, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *PropertyRepository) findOne(ctx context.Context, filter bson.M) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainproperty.ErrSlugTaken
	}
	return err
}

func (r *PropertyRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainproperty.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, hostID string) ([]*domainproperty.Property, error) {
	return r.find(ctx, bson.M{"host_id": hostID})
}

func (r *PropertyRepository) ListActive(ctx context.Context) ([]*domainproperty.Property, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *PropertyRepository) find(ctx context.Context, filter bson.M) ([]*domainproperty.Property, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainproperty.Property
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type propertyDocument struct {
	ID          string `bson:"_id"`
	HostID      string `bson:"host_id"`
	Slug        string `bson:"slug"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	RateCents   int64  `bson:"rate_cents"`
	Currency    string `bson:"currency"`
	Active      bool   `bson:"active"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{
		ID:          string(p.ID),
		HostID:      p.HostID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		RateCents:   p.NightlyRate.Cents,
		Currency:    p.NightlyRate.Currency,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
}

func (d propertyDocument) toEntity() *domainproperty.Property {
	return &domainproperty.Property{
		ID:          domainproperty.ID(d.ID),
		HostID:      d.HostID,
		Slug:        d.Slug,
		Title:       d.Title,
		Description: d.Description,
		NightlyRate: money.Money{Cents: d.RateCents, Currency: d.Currency},
		Active:      d.Active,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}
