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

// Column describes one column of a table.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	// MaxLength is nil unless the type is length bounded.
	MaxLength    *int64  `json:"max_length"`
	IsNullable   bool    `json:"is_nullable"`
	DefaultValue *string `json:"default_value"`
}

// Index describes one index of a table.
type Index struct {
	Name string `json:"name"`
	// Columns in the order the catalog reports them.
	Columns   []string `json:"columns"`
	IsUnique  bool     `json:"is_unique"`
	IsPrimary bool     `json:"is_primary"`
}

// TableSchema is the column and index layout of one table.
// Columns keep their ordinal position; the order of Indexes carries no meaning.
type TableSchema struct {
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes"`
}
