package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageOptions điều khiển pagination/sort cho GetMany
type PageOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// PageResult trả về data kèm total count (trước khi skip/limit)
type PageResult[T any] struct {
	Data  []T
	Total int64
}

// Store là generic document repository cho một collection.
// Mỗi entity type có một Store riêng, filter là bson.M thuần.
type Store[T any] struct {
	coll *mongo.Collection
}

func NewStore[T any](db *mongo.Database, collection string) *Store[T] {
	return &Store[T]{coll: db.Collection(collection)}
}

func (s *Store[T]) Collection() *mongo.Collection {
	return s.coll
}

// GetOne trả về document đầu tiên match filter, nil nếu không có
func (s *Store[T]) GetOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}
	return &doc, nil
}

// GetMany trả về page data + total count
func (s *Store[T]) GetMany(ctx context.Context, filter bson.M, page *PageOptions) (*PageResult[T], error) {
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	findOpts := options.Find()
	if page != nil {
		if page.Sort != nil {
			findOpts.SetSort(page.Sort)
		}
		if page.Skip > 0 {
			findOpts.SetSkip(page.Skip)
		}
		if page.Limit > 0 {
			findOpts.SetLimit(page.Limit)
		}
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var data []T
	if err := cursor.All(ctx, &data); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	return &PageResult[T]{Data: data, Total: total}, nil
}

// Create insert document mới.
// Nếu uniqueFilter != nil và đã có document match → trả về nil (không insert).
// Caller phải treat nil là "đã tồn tại", không phải lỗi hệ thống.
func (s *Store[T]) Create(ctx context.Context, doc *T, uniqueFilter bson.M) (*T, error) {
	if uniqueFilter != nil {
		count, err := s.coll.CountDocuments(ctx, uniqueFilter, options.Count().SetLimit(1))
		if err != nil {
			return nil, fmt.Errorf("check unique filter: %w", err)
		}
		if count > 0 {
			return nil, nil
		}
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Unique index bắt được race giữa count và insert
			return nil, nil
		}
		return nil, fmt.Errorf("insert one: %w", err)
	}
	return doc, nil
}

// CreateMany bulk insert, dùng cho batch creation (chạy trong unit of work nếu có)
func (s *Store[T]) CreateMany(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}
	payload := make([]interface{}, len(docs))
	for i := range docs {
		payload[i] = docs[i]
	}
	if _, err := s.coll.InsertMany(ctx, payload); err != nil {
		return fmt.Errorf("insert many: %w", err)
	}
	return nil
}

// Update apply $set patch cho document đầu tiên match filter,
// trả về document sau update, nil nếu không match
func (s *Store[T]) Update(ctx context.Context, filter bson.M, patch bson.M) (*T, error) {
	patch["updated_at"] = time.Now().UTC()
	return s.FindOneAndUpdate(ctx, filter, bson.M{"$set": patch})
}

// FindOneAndUpdate chạy raw update document (caller tự viết $set/$inc...),
// trả về document SAU update, đây là primitive atomic duy nhất của store.
func (s *Store[T]) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one and update: %w", err)
	}
	return &doc, nil
}

// UpdateMany apply patch cho mọi document match filter, trả về matched count
func (s *Store[T]) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("update many: %w", err)
	}
	return res.MatchedCount, nil
}

// Delete xóa cứng document đầu tiên match filter, trả về document đã xóa
func (s *Store[T]) Delete(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := s.coll.FindOneAndDelete(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one and delete: %w", err)
	}
	return &doc, nil
}

// DeleteMany xóa cứng mọi document match filter
func (s *Store[T]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *Store[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
