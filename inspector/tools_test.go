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
	"encoding/json"
	"strings"

	"github.com/golang/mock/gomock"
	"github.com/pingcap/check"
	"github.com/pingcap/errors"
	"github.com/pingcap/schema-inspector/pkg/catalog"
	"github.com/pingcap/schema-inspector/pkg/schema"
)

type dispatcherSuite struct {
	controller *gomock.Controller
	cat        *MockCatalog
	d          *Dispatcher
}

var _ = check.Suite(&dispatcherSuite{})

func (s *dispatcherSuite) setUpTest(c *check.C) {
	s.controller = gomock.NewController(c)
	s.cat = NewMockCatalog(s.controller)
	s.d = NewDispatcher(NewInspector(s.cat, 0))
}

func (s *dispatcherSuite) tearDownTest() {
	s.controller.Finish()
}

func (s *dispatcherSuite) TestTools(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	tools := s.d.Tools()
	c.Assert(tools, check.HasLen, 2)
	c.Assert(tools[0].Name, check.Equals, "list_tables")
	c.Assert(tools[0].Description, check.Equals, "List tables in a schema")
	c.Assert(tools[1].Name, check.Equals, "get_schema")
	c.Assert(tools[1].Description, check.Equals, "Get schema of a specific table")

	var input struct {
		Required []string `json:"required"`
	}
	c.Assert(json.Unmarshal(tools[1].InputSchema, &input), check.IsNil)
	c.Assert(input.Required, check.DeepEquals, []string{"name"})

	// callers get a copy
	tools[0].Name = "drop_tables"
	c.Assert(s.d.Tools()[0].Name, check.Equals, "list_tables")
}

func (s *dispatcherSuite) TestListTables(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ListTableNames(gomock.Any()).Return(pagilaTables, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolListTables})
	c.Assert(res.IsError, check.IsFalse)
	c.Assert(res.Content, check.HasLen, 1)
	c.Assert(res.Content[0].Type, check.Equals, "text")
	c.Assert(res.Content[0].Text, check.Equals, "[\n  \"actor\",\n  \"film\",\n  \"customer\",\n  \"rental\"\n]")
}

func (s *dispatcherSuite) TestListTablesOfEmptyNamespace(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ListTableNames(gomock.Any()).Return([]string{}, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolListTables})
	c.Assert(res.IsError, check.IsFalse)
	c.Assert(res.Text(), check.Equals, "[]")
}

func (s *dispatcherSuite) TestListTablesFailure(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ListTableNames(gomock.Any()).Return(nil, errors.New("permission denied for schema public"))

	res := s.d.Call(context.Background(), ToolCall{Name: ToolListTables})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "Database error: permission denied for schema public")
}

func (s *dispatcherSuite) TestGetSchema(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ColumnRows(gomock.Any(), "actor").Return(actorColumnRows, nil)
	s.cat.EXPECT().IndexRows(gomock.Any(), "actor").Return(actorIndexRows, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema, Arguments: map[string]string{"name": "actor"}})
	c.Assert(res.IsError, check.IsFalse)
	c.Assert(res.Content, check.HasLen, 1)
	c.Assert(strings.HasPrefix(res.Text(), "{\n  \"columns\": [\n    {\n      \"name\": \"actor_id\","), check.IsTrue)

	var ts schema.TableSchema
	c.Assert(json.Unmarshal([]byte(res.Text()), &ts), check.IsNil)
	c.Assert(ts.Columns, check.HasLen, 4)
	c.Assert(ts.Columns[0].MaxLength, check.IsNil)
	c.Assert(*ts.Columns[1].MaxLength, check.Equals, int64(45))
	c.Assert(ts.Columns[1].DefaultValue, check.IsNil)
	c.Assert(ts.Indexes, check.HasLen, 2)
}

func (s *dispatcherSuite) TestGetSchemaOfUnknownTable(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ColumnRows(gomock.Any(), "nope").Return([]catalog.ColumnRow{}, nil)
	s.cat.EXPECT().IndexRows(gomock.Any(), "nope").Return([]catalog.IndexRow{}, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema, Arguments: map[string]string{"name": "nope"}})
	c.Assert(res.IsError, check.IsFalse)
	c.Assert(res.Text(), check.Equals, "{\n  \"columns\": [],\n  \"indexes\": []\n}")
}

func (s *dispatcherSuite) TestGetSchemaFailure(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ColumnRows(gomock.Any(), "actor").Return(actorColumnRows, nil)
	s.cat.EXPECT().IndexRows(gomock.Any(), "actor").Return(nil, errors.New("connection reset by peer"))

	res := s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema, Arguments: map[string]string{"name": "actor"}})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "Error getting schema for table actor: connection reset by peer")
}

func (s *dispatcherSuite) TestEmptyNameIsPassedThrough(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	s.cat.EXPECT().ColumnRows(gomock.Any(), "").Return(nil, nil)
	s.cat.EXPECT().IndexRows(gomock.Any(), "").Return(nil, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema, Arguments: map[string]string{"name": ""}})
	c.Assert(res.IsError, check.IsFalse)
	c.Assert(res.Text(), check.Equals, "{\n  \"columns\": [],\n  \"indexes\": []\n}")
}

func (s *dispatcherSuite) TestMissingName(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	res := s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "missing required argument: name")

	res = s.d.Call(context.Background(), ToolCall{Name: ToolGetSchema, Arguments: map[string]string{"table": "actor"}})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "missing required argument: name")
}

func (s *dispatcherSuite) TestUnknownTool(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	res := s.d.Call(context.Background(), ToolCall{Name: "drop_table"})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "unknown tool: drop_table")
}

func (s *dispatcherSuite) TestSerializationFailure(c *check.C) {
	s.setUpTest(c)
	defer s.tearDownTest()

	orig := marshalIndent
	defer func() { marshalIndent = orig }()
	marshalIndent = func(v interface{}, prefix, indent string) ([]byte, error) {
		return nil, errors.New("unsupported value")
	}

	s.cat.EXPECT().ListTableNames(gomock.Any()).Return(pagilaTables, nil)

	res := s.d.Call(context.Background(), ToolCall{Name: ToolListTables})
	c.Assert(res.IsError, check.IsTrue)
	c.Assert(res.Text(), check.Equals, "JSON serialization error: unsupported value")
}
