// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	gosql "database/sql"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultMaxOpenConns bounds the connections checked out at the same time.
// Requests beyond the bound wait for a connection to be released.
const DefaultMaxOpenConns = 5

// ColumnRow is one row of the column catalog, in ordinal position order.
type ColumnRow struct {
	Name     string
	DataType string
	// MaxLength is only valid for length bounded types.
	MaxLength gosql.NullInt64
	// IsNullable is the raw "YES"/"NO" marker of the catalog.
	IsNullable string
	Default    gosql.NullString
}

// IndexRow is one (index, column) pair of the index catalog.
// Rows come ordered by index name, then column.
type IndexRow struct {
	IndexName  string
	ColumnName string
	IsUnique   bool
	IsPrimary  bool
}

// Client runs the catalog statements of one dialect over a pooled *sql.DB.
// It is safe for concurrent use.
type Client struct {
	db      *gosql.DB
	dialect *Dialect

	queryHistogram *prometheus.HistogramVec
}

type options struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	queryHistogram  *prometheus.HistogramVec
}

// Option configures a Client.
type Option func(*options)

// MaxOpenConns sets the upper bound of the pool, values <= 0 keep the default.
func MaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// MaxIdleConns sets how many idle connections the pool retains.
func MaxIdleConns(n int) Option {
	return func(o *options) {
		o.maxIdleConns = n
	}
}

// ConnMaxLifetime closes pooled connections older than d, 0 means forever.
func ConnMaxLifetime(d time.Duration) Option {
	return func(o *options) {
		o.connMaxLifetime = d
	}
}

// Metrics observes the duration of every catalog statement, labeled by
// "tables", "columns" or "indexes".
func Metrics(hist *prometheus.HistogramVec) Option {
	return func(o *options) {
		o.queryHistogram = hist
	}
}

var openDB = gosql.Open

// Open parses dsn, opens the pool for its dialect and checks nothing else:
// the first connection is made lazily, use Ping to verify reachability.
func Open(dsn string, opts ...Option) (*Client, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, errors.Trace(err)
	}

	db, err := openDB(dialect.DriverName, source)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s pool", dialect.Name)
	}

	return NewClient(db, dialect, opts...), nil
}

// NewClient wraps an existing pool. The pool bound is applied to db.
func NewClient(db *gosql.DB, dialect *Dialect, opts ...Option) *Client {
	o := options{maxOpenConns: DefaultMaxOpenConns}
	for _, opt := range opts {
		opt(&o)
	}

	db.SetMaxOpenConns(o.maxOpenConns)
	if o.maxIdleConns > 0 {
		db.SetMaxIdleConns(o.maxIdleConns)
	}
	if o.connMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.connMaxLifetime)
	}

	return &Client{
		db:             db,
		dialect:        dialect,
		queryHistogram: o.queryHistogram,
	}
}

// Dialect returns the dialect the client speaks.
func (c *Client) Dialect() *Dialect {
	return c.dialect
}

// ListTableNames returns the base tables of the dialect's namespace.
// An empty namespace yields an empty slice.
func (c *Client) ListTableNames(ctx context.Context) ([]string, error) {
	defer c.observe("tables", time.Now())

	rows, err := c.db.QueryContext(ctx, c.dialect.TablesSQL)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, errors.Trace(err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	log.Debug("list table names", zap.String("namespace", c.dialect.Namespace), zap.Int("count", len(names)))
	return names, nil
}

// ColumnRows returns the column catalog rows of table in ordinal position order.
// A table that does not exist and a table without columns both yield no rows.
func (c *Client) ColumnRows(ctx context.Context, table string) ([]ColumnRow, error) {
	defer c.observe("columns", time.Now())

	rows, err := c.db.QueryContext(ctx, c.dialect.ColumnsSQL, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	cols := make([]ColumnRow, 0)
	for rows.Next() {
		var col ColumnRow
		err = rows.Scan(&col.Name, &col.DataType, &col.MaxLength, &col.IsNullable, &col.Default)
		if err != nil {
			return nil, errors.Trace(err)
		}
		cols = append(cols, col)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	log.Debug("get column rows", zap.String("table", table), zap.Int("count", len(cols)))
	return cols, nil
}

// IndexRows returns one row per indexed column of every index on table,
// ordered by index name and then column. The order is what lets the
// normalizer rebuild each index's column list by appending.
func (c *Client) IndexRows(ctx context.Context, table string) ([]IndexRow, error) {
	defer c.observe("indexes", time.Now())

	rows, err := c.db.QueryContext(ctx, c.dialect.IndexesSQL, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	idxs := make([]IndexRow, 0)
	for rows.Next() {
		var idx IndexRow
		err = rows.Scan(&idx.IndexName, &idx.ColumnName, &idx.IsUnique, &idx.IsPrimary)
		if err != nil {
			return nil, errors.Trace(err)
		}
		idxs = append(idxs, idx)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	log.Debug("get index rows", zap.String("table", table), zap.Int("count", len(idxs)))
	return idxs, nil
}

// Ping verifies a connection to the store can be made.
func (c *Client) Ping(ctx context.Context) error {
	return errors.Trace(c.db.PingContext(ctx))
}

// Stats returns the pool statistics.
func (c *Client) Stats() gosql.DBStats {
	return c.db.Stats()
}

// Close closes the pool.
func (c *Client) Close() error {
	return errors.Trace(c.db.Close())
}

func (c *Client) observe(query string, start time.Time) {
	if c.queryHistogram != nil {
		c.queryHistogram.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}
