package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
)

type EstimateStore struct {
	col *mongo.Collection
}

func NewEstimateStore(db *mongo.Database) *EstimateStore {
	return &EstimateStore{col: db.Collection("estimates")}
}

// EnsureIndexes backs the (property, customer, range) upsert key.
func (s *EstimateStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "property_id", Value: 1},
			{Key: "customer_id", Value: 1},
			{Key: "range.from", Value: 1},
			{Key: "range.to", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *EstimateStore) ByID(ctx context.Context, id domainbooking.EstimateID) (*domainbooking.Estimate, error) {
	var doc estimateDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrEstimateNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (s *EstimateStore) ByPropertyCustomerRange(ctx context.Context, propertyID domainproperty.ID, customerID string, dr daterange.DateRange) (*domainbooking.Estimate, error) {
	filter := bson.M{
		"property_id": string(propertyID),
		"customer_id": customerID,
		"range.from":  dr.From.UnixMilli(),
		"range.to":    dr.To.UnixMilli(),
	}
	var doc estimateDocument
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrEstimateNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (s *EstimateStore) Upsert(ctx context.Context, e *domainbooking.Estimate) error {
	doc := newEstimateDocument(e)
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (s *EstimateStore) MarkPaid(ctx context.Context, id domainbooking.EstimateID, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"payment_status": string(domainbooking.PaymentPaid),
		"updated_at":     now.UTC().UnixMilli(),
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": string(id)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrEstimateNotFound
	}
	return nil
}

func (s *EstimateStore) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Estimate, error) {
	cursor, err := s.col.Find(ctx, bson.M{"customer_id": customerID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Estimate
	for cursor.Next(ctx) {
		var doc estimateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

type estimateDocument struct {
	ID            string        `bson:"_id"`
	PropertyID    string        `bson:"property_id"`
	CustomerID    string        `bson:"customer_id"`
	Guests        []string      `bson:"guests"`
	Range         rangeDocument `bson:"range"`
	Package       string        `bson:"package"`
	TierID        string        `bson:"tier_id"`
	TotalCents    int64         `bson:"total_cents"`
	Currency      string        `bson:"currency"`
	PaymentStatus string        `bson:"payment_status"`
	Token         string        `bson:"token"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
}

func newEstimateDocument(e *domainbooking.Estimate) estimateDocument {
	return estimateDocument{
		ID:            string(e.ID),
		PropertyID:    string(e.PropertyID),
		CustomerID:    e.CustomerID,
		Guests:        e.Guests,
		Range:         rangeDocument{From: e.Range.From.UnixMilli(), To: e.Range.To.UnixMilli()},
		Package:       string(e.Package),
		TierID:        e.TierID,
		TotalCents:    e.Total.Cents,
		Currency:      e.Total.Currency,
		PaymentStatus: string(e.PaymentStatus),
		Token:         e.Token,
		CreatedAt:     e.CreatedAt.UnixMilli(),
		UpdatedAt:     e.UpdatedAt.UnixMilli(),
	}
}

func (d estimateDocument) toEntity() *domainbooking.Estimate {
	return &domainbooking.Estimate{
		ID:            domainbooking.EstimateID(d.ID),
		PropertyID:    domainproperty.ID(d.PropertyID),
		CustomerID:    d.CustomerID,
		Guests:        d.Guests,
		Range:         daterange.DateRange{From: timestampToTime(d.Range.From), To: timestampToTime(d.Range.To)},
		Package:       pricing.PackageType(d.Package),
		TierID:        d.TierID,
		Total:         money.Money{Cents: d.TotalCents, Currency: d.Currency},
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		Token:         d.Token,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}
