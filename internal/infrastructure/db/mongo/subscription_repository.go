package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fotf/subscription-system/internal/core/domain"
)

const subscriptionCollection = "subscriptions"

type MongoSubscriptionRepository struct {
	coll     *mongo.Collection
	users    *mongo.Collection
	products *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{
		coll:     db.Collection(subscriptionCollection),
		users:    db.Collection(accountCollection),
		products: db.Collection(productCollection),
	}
}

type mongoSubscription struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	UserID             primitive.ObjectID `bson:"user_id"`
	ProductID          primitive.ObjectID `bson:"product_id"`
	DiscordUsername    string             `bson:"discord_username"`
	Status             string             `bson:"status"`
	CurrentPeriodStart time.Time          `bson:"current_period_start"`
	CurrentPeriodEnd   time.Time          `bson:"current_period_end"`
	CancelAtPeriodEnd  bool               `bson:"cancel_at_period_end"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
}

func (m mongoSubscription) toDomain() *domain.Subscription {
	return &domain.Subscription{
		ID:                 m.ID.Hex(),
		UserID:             m.UserID.Hex(),
		ProductID:          m.ProductID.Hex(),
		DiscordUsername:    m.DiscordUsername,
		Status:             domain.SubscriptionStatus(m.Status),
		CurrentPeriodStart: m.CurrentPeriodStart.UTC(),
		CurrentPeriodEnd:   m.CurrentPeriodEnd.UTC(),
		CancelAtPeriodEnd:  m.CancelAtPeriodEnd,
		CreatedAt:          unixToTime(m.CreatedAt),
		UpdatedAt:          unixToTime(m.UpdatedAt),
	}
}

func (r *MongoSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) (*domain.Subscription, error) {
	userOID, err := primitive.ObjectIDFromHex(s.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	productOID, err := primitive.ObjectIDFromHex(s.ProductID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	doc := mongoSubscription{
		UserID:             userOID,
		ProductID:          productOID,
		DiscordUsername:    s.DiscordUsername,
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CreatedAt:          s.CreatedAt.Unix(),
		UpdatedAt:          s.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}

	created := *s
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoSubscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSubscriptionNotFound
	}

	var m mongoSubscription
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return m.toDomain(), nil
}

// ListByUser returns the user's subscriptions, most recent first, with the
// Product reference populated.
func (r *MongoSubscriptionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	subs, err := r.find(ctx, bson.M{"user_id": oid})
	if err != nil {
		return nil, err
	}
	if err := r.populateProducts(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListAll returns every subscription with User and Product populated. The
// password hash never leaves this layer.
func (r *MongoSubscriptionRepository) ListAll(ctx context.Context) ([]*domain.Subscription, error) {
	subs, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	if err := r.populateProducts(ctx, subs); err != nil {
		return nil, err
	}
	if err := r.populateUsers(ctx, subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *MongoSubscriptionRepository) ListEnded(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	return r.find(ctx, bson.M{
		"status":             string(domain.SubscriptionActive),
		"current_period_end": bson.M{"$lt": now},
	})
}

func (r *MongoSubscriptionRepository) SetCancelAtPeriodEnd(ctx context.Context, id string, cancel bool) error {
	return r.update(ctx, id, bson.M{"cancel_at_period_end": cancel})
}

func (r *MongoSubscriptionRepository) SetStatus(ctx context.Context, id string, status domain.SubscriptionStatus) error {
	return r.update(ctx, id, bson.M{"status": string(status)})
}

func (r *MongoSubscriptionRepository) update(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSubscriptionNotFound
	}

	fields["updated_at"] = time.Now().UTC().Unix()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *MongoSubscriptionRepository) find(ctx context.Context, filter bson.M) ([]*domain.Subscription, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer cur.Close(ctx)

	subs := []*domain.Subscription{}
	for cur.Next(ctx) {
		var m mongoSubscription
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		subs = append(subs, m.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (r *MongoSubscriptionRepository) populateProducts(ctx context.Context, subs []*domain.Subscription) error {
	for _, sub := range subs {
		oid, err := primitive.ObjectIDFromHex(sub.ProductID)
		if err != nil {
			continue
		}
		var m mongoProduct
		if err := r.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return fmt.Errorf("populate product: %w", err)
		}
		sub.Product = m.toDomain()
	}
	return nil
}

func (r *MongoSubscriptionRepository) populateUsers(ctx context.Context, subs []*domain.Subscription) error {
	for _, sub := range subs {
		oid, err := primitive.ObjectIDFromHex(sub.UserID)
		if err != nil {
			continue
		}
		var m mongoAccount
		if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return fmt.Errorf("populate user: %w", err)
		}
		user := m.toDomain()
		user.PasswordHash = ""
		sub.User = user
	}
	return nil
}
