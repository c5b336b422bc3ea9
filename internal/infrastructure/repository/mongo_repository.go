package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/infrastructure/repository/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository is the shop directory and webhook log backed by MongoDB
type MongoRepository struct {
	shopsCollection    *mongo.Collection
	webhooksCollection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		shopsCollection:    db.Collection("shops"),
		webhooksCollection: db.Collection("webhook_events"),
	}
}

// EnsureIndexes creates the unique shop indexes
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.shopsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "domain", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shopId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create shop indexes: %w", err)
	}
	return nil
}

// SaveShop saves or updates a shop
func (r *MongoRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	doc := entity.MongoShopDocFromDomain(shop)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"domain": shop.Domain}
	update := bson.M{"$set": doc}

	_, err := r.shopsCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}

	return nil
}

// GetShopByDomain retrieves a shop by domain
func (r *MongoRepository) GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	return r.findShop(ctx, bson.M{"domain": shopDomain})
}

// GetShopByID retrieves a shop by its Shopify id
func (r *MongoRepository) GetShopByID(ctx context.Context, id int64) (*domain.Shop, error) {
	return r.findShop(ctx, bson.M{"shopId": id})
}

func (r *MongoRepository) findShop(ctx context.Context, filter bson.M) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	err := r.shopsCollection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// SetLLMGeneratedAt stamps or clears the generation time of a shop
func (r *MongoRepository) SetLLMGeneratedAt(ctx context.Context, id int64, at *time.Time) error {
	update := bson.M{"$set": bson.M{"llmGeneratedAt": at, "updatedAt": time.Now()}}

	_, err := r.shopsCollection.UpdateOne(ctx, bson.M{"shopId": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set llm generated at: %w", err)
	}

	return nil
}

// DeleteShop deletes a shop by its Shopify id
func (r *MongoRepository) DeleteShop(ctx context.Context, id int64) error {
	_, err := r.shopsCollection.DeleteOne(ctx, bson.M{"shopId": id})
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	return nil
}

// LogWebhook logs a webhook event
func (r *MongoRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookDocFromDomain(event)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := r.webhooksCollection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	return nil
}
