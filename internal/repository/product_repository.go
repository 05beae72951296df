package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
)

const productCollection = "products"

// ProductRepo stores the catalog in the products collection.
type ProductRepo struct{ coll *mongo.Collection }

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{coll: db.Collection(productCollection)}
}

// EnsureIndexes creates the indexes used by listing filters.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	return err
}

// Insert stores p and fills in its ID and timestamps.
func (r *ProductRepo) Insert(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("inserted product id is not an ObjectID")
	}
	p.ID = id
	return nil
}

// FindByID returns ErrProductNotFound when id is malformed or absent.
func (r *ProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	var p model.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of products matching q plus the filtered total.
func (r *ProductRepo) List(ctx context.Context, q ProductQuery) ([]model.Product, int64, error) {
	filter := q.Filter()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(q.Sort()).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]model.Product, 0, q.Limit)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies the non-nil fields of ch and returns the stored document.
func (r *ProductRepo) Update(ctx context.Context, id string, ch model.ProductChanges) (*model.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.Category != nil {
		set["category"] = *ch.Category
	}
	if ch.Price != nil {
		set["price"] = *ch.Price
	}
	if ch.Stock != nil {
		set["stock"] = *ch.Stock
	}
	if ch.ImageURL != nil {
		set["imageUrl"] = *ch.ImageURL
	}
	if ch.UpdatedBy != "" {
		set["updatedBy"] = ch.UpdatedBy
	}

	var p model.Product
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes the product and returns what was stored.
func (r *ProductRepo) Delete(ctx context.Context, id string) (*model.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	var p model.Product
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}
