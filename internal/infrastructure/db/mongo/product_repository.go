package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fotf/subscription-system/internal/core/domain"
)

const productCollection = "products"

type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(productCollection)}
}

type mongoProduct struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Price       float64            `bson:"price"`
	Features    []string           `bson:"features,omitempty"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

func (m mongoProduct) toDomain() *domain.Product {
	features := m.Features
	if features == nil {
		features = []string{}
	}
	return &domain.Product{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Features:    features,
		CreatedAt:   unixToTime(m.CreatedAt),
		UpdatedAt:   unixToTime(m.UpdatedAt),
	}
}

func (r *MongoProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	doc := mongoProduct{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Features:    p.Features,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	created := *p
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var m mongoProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return m.toDomain(), nil
}

func (r *MongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	products := []*domain.Product{}
	for cur.Next(ctx) {
		var m mongoProduct
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, m.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
