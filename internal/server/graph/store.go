package graph

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/studygraph/studygraph/internal/server/metrics"
	"github.com/studygraph/studygraph/internal/server/query"
)

// StoreConfig holds Neo4j connection configuration.
type StoreConfig struct {
	URI      string
	Username string
	Password string
	Database string
	// Timeout bounds every query round trip. Zero selects the default.
	Timeout time.Duration
}

const (
	defaultDatabase     = "neo4j"
	defaultQueryTimeout = 15 * time.Second
)

// Store wraps the Neo4j driver. The driver's pool is shared across all
// concurrent operations; each Read acquires its own session and releases
// it on every exit path.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
	log      *zap.Logger
	metrics  *metrics.Collector

	closeOnce sync.Once
	closeErr  error
}

// Connect creates the driver and verifies connectivity before returning.
// Failure is an *UnavailableError and is fatal at startup: the server
// refuses to come up against a store it cannot reach.
func Connect(ctx context.Context, cfg StoreConfig, log *zap.Logger, collector *metrics.Collector) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, &UnavailableError{URI: cfg.URI, Err: err}
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, &UnavailableError{URI: cfg.URI, Err: err}
	}

	database := cfg.Database
	if database == "" {
		database = defaultDatabase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	log.Info("connected to graph store",
		zap.String("uri", cfg.URI),
		zap.String("database", database))

	return &Store{
		driver:   driver,
		database: database,
		timeout:  timeout,
		log:      log,
		metrics:  collector,
	}, nil
}

// Read runs one read-only plan with the given parameters and collects its
// records. The call is bounded by the store timeout; exceeding it surfaces
// as a *TimeoutError, any other driver failure as a *QueryError carrying
// the plan ID.
func (s *Store) Read(ctx context.Context, plan query.Plan, params map[string]any) ([]*neo4j.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, plan.Text, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	elapsed := time.Since(start)

	if err != nil {
		wrapped := classify(plan.ID, s.timeout, err)
		status := metrics.StatusError
		var te *TimeoutError
		if errors.As(wrapped, &te) {
			status = metrics.StatusTimeout
		}
		s.metrics.ObserveQuery(plan.ID, status, elapsed)
		s.log.Warn("graph query failed",
			zap.String("plan", plan.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(wrapped))
		return nil, wrapped
	}

	records := result.([]*neo4j.Record)
	s.metrics.ObserveQuery(plan.ID, metrics.StatusOK, elapsed)
	s.log.Debug("graph query complete",
		zap.String("plan", plan.ID),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", elapsed))
	return records, nil
}

// Close releases the driver. Safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.driver.Close(ctx)
	})
	return s.closeErr
}
