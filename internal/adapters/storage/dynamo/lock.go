package dynamo

// lock.go — the distributed execution lock.
//
// The lease is a single row in the execution_locks table, created with a
// conditional put that fails when the row already exists. That conditional
// write is the system's only mutual-exclusion mechanism, so it must never
// be weakened to an overwrite. The expires_at attribute doubles as the
// table's TTL so a crashed holder's lease is reaped without intervention.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const lockID = "main_execution"

// Lock implements ports.Locker over the execution_locks table.
type Lock struct {
	db    *dynamodb.Client
	table string
	lease time.Duration
	log   zerolog.Logger
}

// NewLock creates the lock with the given lease duration.
func NewLock(store *Store, lease time.Duration, log zerolog.Logger) *Lock {
	return &Lock{
		db:    store.Client(),
		table: store.LocksTable(),
		lease: lease,
		log:   log.With().Str("component", "lock").Logger(),
	}
}

// Acquire tries to create the lease row if absent. (false, nil) means
// another holder owns it; infrastructure failures are real errors.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(l.lease).Unix()

	_, err := l.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item: map[string]types.AttributeValue{
			"lock_id":    strAttr(lockID),
			"locked_at":  strAttr(now.Format(time.RFC3339)),
			"expires_at": &types.AttributeValueMemberN{Value: decimal.NewFromInt(expiresAt).String()},
		},
		ConditionExpression: aws.String("attribute_not_exists(lock_id)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			l.log.Warn().Msg("lock already held, skipping execution")
			return false, nil
		}
		return false, fmt.Errorf("dynamo.Lock.Acquire: %w", err)
	}

	l.log.Info().Msg("lock acquired")
	return true, nil
}

// Release deletes the lease unconditionally.
func (l *Lock) Release(ctx context.Context) error {
	_, err := l.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.table),
		Key: map[string]types.AttributeValue{
			"lock_id": strAttr(lockID),
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo.Lock.Release: %w", err)
	}
	l.log.Info().Msg("lock released")
	return nil
}
