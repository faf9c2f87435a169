// Package dynamo is the production ledger: four append-only DynamoDB tables
// plus the execution-locks table backing the distributed lock.
package dynamo

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"
)

// Store implements ports.Ledger over DynamoDB.
type Store struct {
	db     *dynamodb.Client
	tables tableNames
	log    zerolog.Logger
}

type tableNames struct {
	judgments    string
	transactions string
	snapshots    string
	priceHistory string
	locks        string
}

// NewStore builds a Store using the default AWS credential chain.
// tablePrefix matches the provisioning scripts, e.g. "rwa_trading_agent".
func NewStore(ctx context.Context, region, tablePrefix string, log zerolog.Logger) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("dynamo.NewStore: load aws config: %w", err)
	}

	return &Store{
		db:     dynamodb.NewFromConfig(cfg),
		tables: newTableNames(tablePrefix),
		log:    log.With().Str("component", "dynamo").Logger(),
	}, nil
}

// NewStoreWithClient injects a preconfigured client (tests, local endpoints).
func NewStoreWithClient(db *dynamodb.Client, tablePrefix string, log zerolog.Logger) *Store {
	return &Store{
		db:     db,
		tables: newTableNames(tablePrefix),
		log:    log.With().Str("component", "dynamo").Logger(),
	}
}

func newTableNames(prefix string) tableNames {
	return tableNames{
		judgments:    prefix + "_judgments",
		transactions: prefix + "_transactions",
		snapshots:    prefix + "_portfolio_snapshots",
		priceHistory: prefix + "_price_history",
		locks:        prefix + "_execution_locks",
	}
}

// Client exposes the underlying DynamoDB client for the lock.
func (s *Store) Client() *dynamodb.Client {
	return s.db
}

// LocksTable is the execution-locks table name.
func (s *Store) LocksTable() string {
	return s.tables.locks
}
