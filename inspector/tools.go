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
	"fmt"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	// ToolListTables lists the tables of the default namespace.
	ToolListTables = "list_tables"
	// ToolGetSchema returns the columns and indexes of one table.
	ToolGetSchema = "get_schema"

	contentTypeText = "text"
)

// ToolCall is a request to run one tool.
type ToolCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Content is one item of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the outcome of a tool call. A failed call is still a
// result, with IsError set and the failure described in the text.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"is_error"`
}

// Text returns the text of all content items.
func (r *ToolResult) Text() string {
	var text string
	for _, c := range r.Content {
		text += c.Text
	}
	return text
}

// Tool describes a tool for discovery.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

var tools = []Tool{
	{
		Name:        ToolListTables,
		Description: "List tables in a schema",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
	},
	{
		Name:        ToolGetSchema,
		Description: "Get schema of a specific table",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string","description":"Table name"}},"required":["name"]}`),
	},
}

var marshalIndent = json.MarshalIndent

// Dispatcher maps tool calls onto the Inspector and renders the answers.
type Dispatcher struct {
	inspector *Inspector
}

// NewDispatcher returns a Dispatcher serving ins.
func NewDispatcher(ins *Inspector) *Dispatcher {
	return &Dispatcher{inspector: ins}
}

// Tools returns the descriptors of the tools Call accepts.
func (d *Dispatcher) Tools() []Tool {
	ts := make([]Tool, len(tools))
	copy(ts, tools)
	return ts
}

// Call runs one tool. It never returns nil.
func (d *Dispatcher) Call(ctx context.Context, call ToolCall) *ToolResult {
	var res *ToolResult
	switch call.Name {
	case ToolListTables:
		res = d.listTables(ctx)
	case ToolGetSchema:
		name, ok := call.Arguments["name"]
		if !ok {
			res = errorResult("missing required argument: name")
		} else {
			res = d.getSchema(ctx, name)
		}
	default:
		res = errorResult(fmt.Sprintf("unknown tool: %s", call.Name))
	}

	observeToolCall(call.Name, res)
	if res.IsError {
		log.Warn("tool call failed", zap.String("tool", call.Name), zap.String("result", res.Text()))
	}
	return res
}

func (d *Dispatcher) listTables(ctx context.Context) *ToolResult {
	names, err := d.inspector.ListTables(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("Database error: %v", err))
	}
	return jsonResult(names)
}

func (d *Dispatcher) getSchema(ctx context.Context, name string) *ToolResult {
	ts, err := d.inspector.GetSchema(ctx, name)
	if err != nil {
		return errorResult(fmt.Sprintf("Error getting schema for table %s: %v", name, err))
	}
	return jsonResult(ts)
}

func jsonResult(v interface{}) *ToolResult {
	data, err := marshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("JSON serialization error: %v", err))
	}
	return &ToolResult{Content: []Content{{Type: contentTypeText, Text: string(data)}}}
}

func errorResult(text string) *ToolResult {
	return &ToolResult{
		Content: []Content{{Type: contentTypeText, Text: text}},
		IsError: true,
	}
}
