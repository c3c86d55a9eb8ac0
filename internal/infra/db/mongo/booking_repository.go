package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "plek/internal/domain/booking"
	"plek/internal/domain/pricing"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
	"plek/internal/domain/shared/money"
)

// BookingStore persists bookings plus one occupancy document per occupied
// night. The unique (property_id, night) index on the occupancy collection
// is the conditional insert closing the double-booking race: of two
// concurrent writers for an overlapping range, the second hits a duplicate
// key and fails deterministically.
type BookingStore struct {
	bookings *mongo.Collection
	nights   *mongo.Collection
}

func NewBookingStore(db *mongo.Database) *BookingStore {
	return &BookingStore{
		bookings: db.Collection("bookings"),
		nights:   db.Collection("booking_nights"),
	}
}

// EnsureIndexes creates the uniqueness guard; call at startup.
func (s *BookingStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.nights.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "night", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "estimate_id", Value: 1}},
	})
	return err
}

func (s *BookingStore) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := s.bookings.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (s *BookingStore) ByEstimateID(ctx context.Context, id domainbooking.EstimateID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := s.bookings.FindOne(ctx, bson.M{"estimate_id": string(id)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (s *BookingStore) FindOverlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	// Half-open intervals: [a,b) and [c,d) overlap iff a < d && c < b.
	filter := bson.M{
		"property_id": string(propertyID),
		"range.from":  bson.M{"$lt": dr.To.UnixMilli()},
		"range.to":    bson.M{"$gt": dr.From.UnixMilli()},
	}
	return s.find(ctx, filter)
}

func (s *BookingStore) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	return s.find(ctx, bson.M{"property_id": string(propertyID)})
}

func (s *BookingStore) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	return s.find(ctx, bson.M{"customer_id": customerID})
}

func (s *BookingStore) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := s.bookings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "range.from", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEntity())
	}
	return out, cursor.Err()
}

func (s *BookingStore) Insert(ctx context.Context, b *domainbooking.Booking) error {
	// Claim the nights first. The unique index rejects any night already
	// held by another booking; a partial claim is rolled back before
	// surfacing the conflict.
	nights := make([]interface{}, 0, b.Range.Nights())
	for _, day := range b.Range.Days() {
		nights = append(nights, nightDocument{
			PropertyID: string(b.PropertyID),
			Night:      day.UnixMilli(),
			BookingID:  string(b.ID),
		})
	}
	if _, err := s.nights.InsertMany(ctx, nights, options.InsertMany().SetOrdered(true)); err != nil {
		_, _ = s.nights.DeleteMany(ctx, bson.M{"booking_id": string(b.ID)})
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrDateConflict
		}
		return err
	}
	if _, err := s.bookings.InsertOne(ctx, newBookingDocument(b)); err != nil {
		_, _ = s.nights.DeleteMany(ctx, bson.M{"booking_id": string(b.ID)})
		return err
	}
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := s.bookings.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrBookingNotFound
	}
	_, err = s.nights.DeleteMany(ctx, bson.M{"booking_id": string(id)})
	return err
}

type bookingDocument struct {
	ID            string        `bson:"_id"`
	PropertyID    string        `bson:"property_id"`
	CustomerID    string        `bson:"customer_id"`
	Guests        []string      `bson:"guests"`
	Range         rangeDocument `bson:"range"`
	Package       string        `bson:"package"`
	TotalCents    int64         `bson:"total_cents"`
	Currency      string        `bson:"currency"`
	PaymentStatus string        `bson:"payment_status"`
	EstimateID    string        `bson:"estimate_id,omitempty"`
	Token         string        `bson:"token"`
	CreatedAt     int64         `bson:"created_at"`
}

type rangeDocument struct {
	From int64 `bson:"from"`
	To   int64 `bson:"to"`
}

type nightDocument struct {
	PropertyID string `bson:"property_id"`
	Night      int64  `bson:"night"`
	BookingID  string `bson:"booking_id"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		CustomerID:    b.CustomerID,
		Guests:        b.Guests,
		Range:         rangeDocument{From: b.Range.From.UnixMilli(), To: b.Range.To.UnixMilli()},
		Package:       string(b.Package),
		TotalCents:    b.Total.Cents,
		Currency:      b.Total.Currency,
		PaymentStatus: string(b.PaymentStatus),
		EstimateID:    string(b.EstimateID),
		Token:         b.Token,
		CreatedAt:     b.CreatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toEntity() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:            domainbooking.BookingID(d.ID),
		PropertyID:    domainproperty.ID(d.PropertyID),
		CustomerID:    d.CustomerID,
		Guests:        d.Guests,
		Range:         daterange.DateRange{From: timestampToTime(d.Range.From), To: timestampToTime(d.Range.To)},
		Package:       pricing.PackageType(d.Package),
		Total:         money.Money{Cents: d.TotalCents, Currency: d.Currency},
		PaymentStatus: domainbooking.PaymentStatus(d.PaymentStatus),
		EstimateID:    domainbooking.EstimateID(d.EstimateID),
		Token:         d.Token,
		CreatedAt:     timestampToTime(d.CreatedAt),
	}
}
