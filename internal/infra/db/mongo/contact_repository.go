package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	domaincontact "glampstay/internal/domain/contact"
)

type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{col: db.Collection("contact_messages")}
}

func (r *ContactRepository) Save(ctx context.Context, msg *domaincontact.Message) error {
	_, err := r.col.InsertOne(ctx, contactMessageDocument{
		ID:        string(msg.ID),
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Body:      msg.Body,
		UserID:    msg.UserID,
		CreatedAt: msg.CreatedAt,
	})
	return err
}

type contactMessageDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Subject   string    `bson:"subject,omitempty"`
	Body      string    `bson:"body"`
	UserID    string    `bson:"user_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

var _ domaincontact.Repository = (*ContactRepository)(nil)
