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

package schema

import (
	"github.com/pingcap/schema-inspector/pkg/catalog"
)

const nullableMarker = "YES"

// BuildColumns maps column rows one to one, keeping their order.
func BuildColumns(rows []catalog.ColumnRow) []Column {
	cols := make([]Column, 0, len(rows))
	for _, row := range rows {
		col := Column{
			Name:       row.Name,
			DataType:   row.DataType,
			IsNullable: row.IsNullable == nullableMarker,
		}
		if row.MaxLength.Valid {
			n := row.MaxLength.Int64
			col.MaxLength = &n
		}
		if row.Default.Valid {
			def := row.Default.String
			col.DefaultValue = &def
		}
		cols = append(cols, col)
	}
	return cols
}

// BuildIndexes groups index rows by index name.
// The first row of a group decides IsUnique and IsPrimary, every row
// appends its column, so the column order is the row order.
func BuildIndexes(rows []catalog.IndexRow) []Index {
	indexes := make([]Index, 0)
	// index name -> position in indexes
	pos := make(map[string]int)
	for _, row := range rows {
		i, ok := pos[row.IndexName]
		if !ok {
			i = len(indexes)
			pos[row.IndexName] = i
			indexes = append(indexes, Index{
				Name:      row.IndexName,
				Columns:   make([]string, 0, 1),
				IsUnique:  row.IsUnique,
				IsPrimary: row.IsPrimary,
			})
		}
		indexes[i].Columns = append(indexes[i].Columns, row.ColumnName)
	}
	return indexes
}

// Assemble composes a TableSchema. Nil slices become empty ones so the
// JSON form always carries arrays.
func Assemble(columns []Column, indexes []Index) *TableSchema {
	if columns == nil {
		columns = []Column{}
	}
	if indexes == nil {
		indexes = []Index{}
	}
	return &TableSchema{Columns: columns, Indexes: indexes}
}
