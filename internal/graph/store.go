package graph

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconf "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Error kinds the rest of the service matches on. Driver-specific errors
// never leave this package.
var (
	ErrNotFound    = errors.New("graph: not found")
	ErrUnavailable = errors.New("graph: store unavailable")
)

// Options controls connection behaviour.
type Options struct {
	URI          string
	User         string
	Pass         string
	Retries      int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	QueryTimeout time.Duration
}

// Store is the read/write adapter over the property graph.
type Store struct {
	driver  neo4j.DriverWithContext
	timeout time.Duration

	schemaOnce sync.Once
	hasCompany bool
	hasSchool  bool
}

// Connect opens a driver and verifies connectivity, retrying with
// exponential backoff so the service can start while the store is booting.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(opts.URI,
		neo4j.BasicAuth(opts.User, opts.Pass, ""),
		func(c *neo4jconf.Config) {
			c.MaxConnectionPoolSize = 10
		})
	if err != nil {
		return nil, fmt.Errorf("graph: open driver: %w", err)
	}

	delay := opts.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}
	retries := opts.Retries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; ; attempt++ {
		err = driver.VerifyConnectivity(ctx)
		if err == nil {
			break
		}
		if attempt >= retries {
			_ = driver.Close(ctx)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		log.Printf("[Graph] Connect attempt %d/%d failed: %v (retrying in %s)", attempt, retries, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			_ = driver.Close(ctx)
			return nil, ctx.Err()
		}
		delay *= 2
		if opts.MaxDelay > 0 && delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Store{driver: driver, timeout: timeout}, nil
}

func (s *Store) Close(ctx context.Context) {
	if err := s.driver.Close(ctx); err != nil {
		log.Println("[Graph] Error closing driver:", err)
	}
}

// Query runs a read transaction and returns each record as a plain map.
func (s *Store) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var rows []map[string]any
		for res.Next(ctx) {
			rows = append(rows, res.Record().AsMap())
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, mapDriverErr(err)
	}
	rows, _ := out.([]map[string]any)
	return rows, nil
}

// Write runs a single statement in a write transaction.
func (s *Store) Write(ctx context.Context, cypher string, params map[string]any) error {
	return s.WriteTx(ctx, Statement{Cypher: cypher, Params: params})
}

// writeQuery runs a write statement and returns its records. Used by
// batch updates that report how many nodes they touched.
func (s *Store) writeQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var rows []map[string]any
		for res.Next(ctx) {
			rows = append(rows, res.Record().AsMap())
		}
		return rows, res.Err()
	})
	if err != nil {
		return nil, mapDriverErr(err)
	}
	rows, _ := out.([]map[string]any)
	return rows, nil
}

// Statement is one parameterized write.
type Statement struct {
	Cypher string
	Params map[string]any
}

// WriteTx runs all statements inside one write transaction; either all
// commit or none do. Layer metric writes rely on this.
func (s *Store) WriteTx(ctx context.Context, stmts ...Statement) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range stmts {
			res, err := tx.Run(ctx, st.Cypher, st.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return mapDriverErr(err)
	}
	return nil
}

// detectSchema probes for optional labels once per process. A graph
// ingested without companies/schools is still rankable; the affected
// subqueries are skipped.
func (s *Store) detectSchema(ctx context.Context) {
	s.schemaOnce.Do(func() {
		rows, err := s.Query(ctx, `CALL db.labels() YIELD label RETURN collect(label) AS labels`, nil)
		if err != nil || len(rows) == 0 {
			log.Printf("[Graph] Schema detection failed, assuming full schema: %v", err)
			s.hasCompany, s.hasSchool = true, true
			return
		}
		for _, l := range asStrings(rows[0]["labels"]) {
			switch l {
			case "Company":
				s.hasCompany = true
			case "School":
				s.hasSchool = true
			}
		}
		log.Printf("[Graph] Schema detected: company=%v school=%v", s.hasCompany, s.hasSchool)
	})
}

func mapDriverErr(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// ---- record value helpers ----

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return 0
}

func asInt(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	}
	return 0
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
