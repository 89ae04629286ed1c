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

package schemactl

import (
	"context"
	"fmt"
	"sync"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/schema-inspector/inspector"
	"github.com/pingcap/schema-inspector/pkg/catalog"
	"go.uber.org/zap"
)

// ErrToolFailed is returned by Process after an error result was printed.
var ErrToolFailed = errors.New("tool call failed")

var openCatalog = catalog.Open

// Printer runs one tool call and prints its result.
type Printer struct {
	cfg     *Config
	catalog *catalog.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPrinter creates a new Printer instance.
func NewPrinter(cfg *Config) (*Printer, error) {
	cat, err := openCatalog(cfg.DSN, catalog.MaxOpenConns(cfg.MaxOpenConns))
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &Printer{
		cfg:     cfg,
		catalog: cat,
	}, nil
}

// Process runs the configured call and prints the result text to stdout.
func (p *Printer) Process() error {
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	d := inspector.NewDispatcher(inspector.NewInspector(p.catalog, p.cfg.queryTimeout))
	res := d.Call(ctx, p.cfg.Call)
	fmt.Println(res.Text())

	if res.IsError {
		return ErrToolFailed
	}
	return nil
}

// Close cancels a running call and closes the catalog.
func (p *Printer) Close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	if err := p.catalog.Close(); err != nil {
		log.Warn("close catalog failed", zap.Error(err))
	}
}
