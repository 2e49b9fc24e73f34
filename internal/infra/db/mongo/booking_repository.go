package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "glampstay/internal/domain/availability"
	domainbooking "glampstay/internal/domain/booking"
	domainproperty "glampstay/internal/domain/property"
	domainrange "glampstay/internal/domain/shared/daterange"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// BookingRepository stores bookings. Every save of a booking that holds dates
// also bumps the property's calendar document, so two transactions booking the
// same property write the same document and one of them aborts.
type BookingRepository struct {
	col       *mongo.Collection
	calendars *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "range.check_in", Value: 1}}},
	})
	return &BookingRepository{col: col, calendars: db.Collection("property_calendar")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Status.Active() {
		if err := r.bumpCalendar(ctx, b.PropertyID); err != nil {
			return err
		}
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) bumpCalendar(ctx context.Context, propertyID domainproperty.ID) error {
	_, err := r.calendars.UpdateOne(ctx,
		bson.M{"_id": string(propertyID)},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.Update().SetUpsert(true),
	)
	if err == nil {
		return nil
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: concurrent booking for property %s", domainavailability.ErrUnavailable, propertyID)
	}
	return err
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID, statuses ...domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.List(ctx, domainbooking.ListFilter{PropertyID: propertyID, Statuses: statuses})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	if userID == "" {
		return nil, nil
	}
	return r.List(ctx, domainbooking.ListFilter{UserID: userID})
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	query := bson.M{}
	if filter.PropertyID != "" {
		query["property_id"] = string(filter.PropertyID)
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusStrings(filter.Statuses)}
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *BookingRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*domainbooking.Booking, error) {
	query := bson.M{
		"status":           string(domainbooking.StatusConfirmed),
		"reminder_sent_at": int64(0),
		"range.check_in":   bson.M{"$gte": from.UnixMilli(), "$lt": to.UnixMilli()},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}}))
}

func (r *BookingRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

func statusStrings(statuses []domainbooking.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type guestsDocument struct {
	Adults   int `bson:"adults"`
	Children int `bson:"children"`
	Infants  int `bson:"infants"`
	Pets     int `bson:"pets"`
}

type contactDocument struct {
	Name  string `bson:"name"`
	Email string `bson:"email"`
	Phone string `bson:"phone,omitempty"`
}

type bookingDocument struct {
	ID               string          `bson:"_id"`
	PropertyID       string          `bson:"property_id"`
	UserID           string          `bson:"user_id"`
	Range            rangeDocument   `bson:"range"`
	Guests           guestsDocument  `bson:"guests"`
	Contact          contactDocument `bson:"contact"`
	SpecialRequests  string          `bson:"special_requests,omitempty"`
	Policy           string          `bson:"policy"`
	Price            priceDocument   `bson:"price"`
	Status           string          `bson:"status"`
	PaymentStatus    string          `bson:"payment_status"`
	PaymentReference string          `bson:"payment_reference,omitempty"`
	RefundAmount     moneyDocument   `bson:"refund_amount"`
	CancelReason     string          `bson:"cancel_reason,omitempty"`
	CanceledBy       string          `bson:"canceled_by,omitempty"`
	CanceledAt       int64           `bson:"canceled_at"`
	ConfirmedAt      int64           `bson:"confirmed_at"`
	CompletedAt      int64           `bson:"completed_at"`
	ReminderSentAt   int64           `bson:"reminder_sent_at"`
	CreatedAt        int64           `bson:"created_at"`
	UpdatedAt        int64           `bson:"updated_at"`
	Version          int64           `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:               string(b.ID),
		PropertyID:       string(b.PropertyID),
		UserID:           b.UserID,
		Range:            rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:           guestsDocument{Adults: b.Guests.Adults, Children: b.Guests.Children, Infants: b.Guests.Infants, Pets: b.Guests.Pets},
		Contact:          contactDocument{Name: b.Contact.Name, Email: b.Contact.Email, Phone: b.Contact.Phone},
		SpecialRequests:  b.SpecialRequests,
		Policy:           string(b.Policy),
		Price:            newPriceDocument(b.Price),
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		PaymentReference: b.PaymentReference,
		RefundAmount:     newMoneyDocument(b.RefundAmount),
		CancelReason:     b.CancelReason,
		CanceledBy:       b.CanceledBy,
		CanceledAt:       timeToTimestamp(b.CanceledAt),
		ConfirmedAt:      timeToTimestamp(b.ConfirmedAt),
		CompletedAt:      timeToTimestamp(b.CompletedAt),
		ReminderSentAt:   timeToTimestamp(b.ReminderSentAt),
		CreatedAt:        timeToTimestamp(b.CreatedAt),
		UpdatedAt:        timeToTimestamp(b.UpdatedAt),
		Version:          b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:               domainbooking.BookingID(d.ID),
		PropertyID:       domainproperty.ID(d.PropertyID),
		UserID:           d.UserID,
		Range:            domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:           domainbooking.GuestCount{Adults: d.Guests.Adults, Children: d.Guests.Children, Infants: d.Guests.Infants, Pets: d.Guests.Pets},
		Contact:          domainbooking.Contact{Name: d.Contact.Name, Email: d.Contact.Email, Phone: d.Contact.Phone},
		SpecialRequests:  d.SpecialRequests,
		Policy:           domainbooking.Policy(d.Policy),
		Price:            d.Price.toBreakdown(),
		Status:           domainbooking.Status(d.Status),
		PaymentStatus:    domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentReference: d.PaymentReference,
		RefundAmount:     d.RefundAmount.toMoney(),
		CancelReason:     d.CancelReason,
		CanceledBy:       d.CanceledBy,
		CanceledAt:       timestampToTime(d.CanceledAt),
		ConfirmedAt:      timestampToTime(d.ConfirmedAt),
		CompletedAt:      timestampToTime(d.CompletedAt),
		ReminderSentAt:   timestampToTime(d.ReminderSentAt),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
