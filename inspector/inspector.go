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

package inspector

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/schema-inspector/pkg/catalog"
	"github.com/pingcap/schema-inspector/pkg/schema"
	"go.uber.org/zap"
)

//go:generate mockgen -destination catalog_mock_test.go -package inspector . Catalog

// Catalog is the view of the store the Inspector needs.
// *catalog.Client implements it.
type Catalog interface {
	ListTableNames(ctx context.Context) ([]string, error)
	ColumnRows(ctx context.Context, table string) ([]catalog.ColumnRow, error)
	IndexRows(ctx context.Context, table string) ([]catalog.IndexRow, error)
}

var _ Catalog = &catalog.Client{}

// Inspector answers the two introspection requests. It holds no state of
// its own, so one Inspector serves any number of concurrent requests.
type Inspector struct {
	cat          Catalog
	queryTimeout time.Duration
}

// NewInspector returns an Inspector over cat. A positive queryTimeout
// bounds every request, 0 leaves requests bounded only by their context.
func NewInspector(cat Catalog, queryTimeout time.Duration) *Inspector {
	return &Inspector{cat: cat, queryTimeout: queryTimeout}
}

func (i *Inspector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.queryTimeout > 0 {
		return context.WithTimeout(ctx, i.queryTimeout)
	}
	return context.WithCancel(ctx)
}

// ListTables returns the names of the base tables in the default namespace.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	names, err := i.cat.ListTableNames(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return names, nil
}

// GetSchema returns the columns and indexes of table. The column query
// runs first and a failure of either query fails the whole request.
// A table that does not exist yields an empty schema, not an error.
func (i *Inspector) GetSchema(ctx context.Context, table string) (*schema.TableSchema, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	colRows, err := i.cat.ColumnRows(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	idxRows, err := i.cat.IndexRows(ctx, table)
	if err != nil {
		return nil, errors.Trace(err)
	}

	ts := schema.Assemble(schema.BuildColumns(colRows), schema.BuildIndexes(idxRows))
	log.Debug("get schema",
		zap.String("table", table),
		zap.Int("columns", len(ts.Columns)),
		zap.Int("indexes", len(ts.Indexes)))
	return ts, nil
}
