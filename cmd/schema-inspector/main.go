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
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/schema-inspector/inspector"
	"github.com/pingcap/schema-inspector/pkg/util"
	"github.com/pingcap/schema-inspector/pkg/version"
	"go.uber.org/zap"
)

func main() {
	cfg := inspector.NewConfig()
	if err := cfg.Parse(os.Args[1:]); err != nil {
		if errors.Cause(err) == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatal("verifying flags failed. See 'schema-inspector --help'.", zap.String("error", errors.ErrorStack(err)))
	}

	if err := util.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal("Failed to initialize log", zap.Error(err))
	}
	version.PrintVersionInfo()
	log.Info("use config", zap.Stringer("config", cfg))

	srv, err := inspector.NewServer(cfg)
	if err != nil {
		log.Fatal("create schema-inspector server failed", zap.String("error", errors.ErrorStack(err)))
	}

	util.SetupSignalHandler(func(_ os.Signal) {
		srv.Close()
	})

	log.Info("start run server...")
	if err := srv.Run(); err != nil {
		log.Error("schema-inspector exited with error", zap.String("error", errors.ErrorStack(err)))
		os.Exit(1)
	}

	log.Info("schema-inspector exit")
}
