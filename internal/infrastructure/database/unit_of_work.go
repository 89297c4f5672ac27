package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/pkg/logger"
)

// UnitOfWork wrap multi-document operations trong một mongo session/transaction.
//
// MongoDB chỉ support transactions khi chạy replica set. Thay vì silently
// downgrade, capability được probe một lần lúc khởi tạo và expose qua
// Transactional(), caller tự quyết định có chấp nhận chạy non-atomic không.
type UnitOfWork struct {
	client        *mongo.Client
	transactional bool
}

func NewUnitOfWork(client *mongo.Client) *UnitOfWork {
	return &UnitOfWork{
		client:        client,
		transactional: supportsTransactions(client),
	}
}

// Transactional cho biết store có chạy được multi-document transaction không
func (u *UnitOfWork) Transactional() bool {
	return u.transactional
}

// WithTransaction chạy fn trong transaction nếu store support.
// Nếu không, fn chạy trực tiếp (non-atomic) và một warning được log;
// caller đã có thể check Transactional() trước để từ chối.
func (u *UnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !u.transactional {
		logger.Warn("store does not support transactions, executing without atomicity", map[string]interface{}{})
		return fn(ctx)
	}

	session, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// supportsTransactions check server có phải replica set / mongos không.
// Standalone mongod trả về hello không có setName.
func supportsTransactions(client *mongo.Client) bool {
	var result bson.M
	err := client.Database("admin").RunCommand(context.Background(), bson.D{{Key: "hello", Value: 1}}).Decode(&result)
	if err != nil {
		return false
	}
	if _, ok := result["setName"]; ok {
		return true
	}
	if msg, ok := result["msg"].(string); ok && msg == "isdbgrid" {
		return true
	}
	return false
}
