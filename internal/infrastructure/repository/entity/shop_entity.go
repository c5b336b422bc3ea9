package entity

import (
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents a shop in MongoDB
type MongoShopDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ShopID         int64              `bson:"shopId"`
	Domain         string             `bson:"domain"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	AccessToken    string             `bson:"accessToken"`
	Scopes         []string           `bson:"scopes"`
	LLMGeneratedAt *time.Time         `bson:"llmGeneratedAt"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		ID:             d.ShopID,
		Domain:         d.Domain,
		Name:           d.Name,
		Email:          d.Email,
		AccessToken:    d.AccessToken,
		Scopes:         d.Scopes,
		LLMGeneratedAt: d.LLMGeneratedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	return &MongoShopDoc{
		ShopID:         shop.ID,
		Domain:         shop.Domain,
		Name:           shop.Name,
		Email:          shop.Email,
		AccessToken:    shop.AccessToken,
		Scopes:         shop.Scopes,
		LLMGeneratedAt: shop.LLMGeneratedAt,
		CreatedAt:      shop.CreatedAt,
		UpdatedAt:      shop.UpdatedAt,
	}
}

// MongoWebhookDoc represents a received webhook in MongoDB
type MongoWebhookDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EventID    string             `bson:"eventId"`
	Topic      string             `bson:"topic"`
	Shop       string             `bson:"shop"`
	ShopID     int64              `bson:"shopId,omitempty"`
	Payload    string             `bson:"payload"`
	Verified   bool               `bson:"verified"`
	ReceivedAt time.Time          `bson:"receivedAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// MongoWebhookDocFromDomain converts a domain entity to a MongoDB document
func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	return &MongoWebhookDoc{
		EventID:    event.ID,
		Topic:      event.Topic,
		Shop:       event.Shop,
		ShopID:     event.ShopID,
		Payload:    string(event.Payload),
		Verified:   event.Verified,
		ReceivedAt: event.ReceivedAt,
	}
}
