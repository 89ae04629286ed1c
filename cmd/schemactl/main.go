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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/errors"
	"github.com/pingcap/schema-inspector/pkg/util"
	"github.com/pingcap/schema-inspector/schemactl"
)

func main() {
	cfg := schemactl.NewConfig()
	if err := cfg.Parse(os.Args[1:]); err != nil {
		if errors.Cause(err) == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "verify flags failed, see 'schemactl --help'. %v\n", err)
		os.Exit(2)
	}

	if err := util.InitLogger(cfg.LogLevel, ""); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(2)
	}

	p, err := schemactl.NewPrinter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open catalog failed: %v\n", err)
		os.Exit(1)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-sc
		p.Close()
		os.Exit(1)
	}()

	err = p.Process()
	p.Close()
	if err != nil {
		os.Exit(1)
	}
}
