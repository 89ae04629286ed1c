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
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/schema-inspector/inspector"
	"github.com/pingcap/schema-inspector/pkg/catalog"
	"github.com/pingcap/schema-inspector/pkg/util"
	"github.com/pingcap/schema-inspector/pkg/version"
	"go.uber.org/zap"
)

const (
	cmdList   = "list"
	cmdSchema = "schema"
)

// Config is the main configuration for the schemactl tool.
type Config struct {
	*flag.FlagSet `toml:"-" json:"-"`
	DSN           string        `toml:"dsn" json:"-"`
	QueryTimeout  util.Duration `toml:"query-timeout" json:"query-timeout"`
	MaxOpenConns  int           `toml:"max-open-conns" json:"max-open-conns"`
	LogLevel      string        `toml:"log-level" json:"log-level"`

	// Call is the tool call built from the positional arguments.
	Call inspector.ToolCall `toml:"-" json:"call"`

	queryTimeout time.Duration
	configFile   string
	printVersion bool
}

// NewConfig creates a Config instance.
func NewConfig() *Config {
	c := &Config{}
	c.FlagSet = flag.NewFlagSet("schemactl", flag.ContinueOnError)
	fs := c.FlagSet
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage of schemactl:")
		fmt.Fprintln(os.Stderr, "  schemactl [flags] list")
		fmt.Fprintln(os.Stderr, "  schemactl [flags] schema <table>")
		fs.PrintDefaults()
	}

	fs.StringVar(&c.DSN, "dsn", "", "connection string of the inspected database")
	fs.Var(&c.QueryTimeout, "query-timeout", "deadline of one operation, 0 means no deadline")
	fs.IntVar(&c.MaxOpenConns, "max-open-conns", 1, "max open connections of the pool")
	fs.StringVar(&c.LogLevel, "L", "error", "log level: debug, info, warn, error, fatal")
	fs.StringVar(&c.configFile, "config", "", "path to the configuration file")
	fs.BoolVar(&c.printVersion, "V", false, "print schemactl version info")

	return c
}

func (c *Config) String() string {
	cfgBytes, err := json.Marshal(c)
	if err != nil {
		log.Error("marshal config failed", zap.Error(err))
	}

	return string(cfgBytes)
}

// Parse parses keys/values from command line flags and toml configuration file,
// then builds the tool call from the remaining arguments.
func (c *Config) Parse(args []string) error {
	// Parse first to get the config file
	if err := c.FlagSet.Parse(args); err != nil {
		return errors.Trace(err)
	}

	if c.printVersion {
		fmt.Println(version.GetRawVersionInfo())
		os.Exit(0)
	}

	if c.configFile != "" {
		// Load config file if specified
		if err := c.configFromFile(c.configFile); err != nil {
			return errors.Trace(err)
		}
	}

	// Parse again to replace with command line options
	if err := c.FlagSet.Parse(args); err != nil {
		return errors.Trace(err)
	}

	var err error
	c.Call, err = parseCommand(c.FlagSet.Args())
	if err != nil {
		return errors.Trace(err)
	}
	if c.queryTimeout, err = c.QueryTimeout.ParseDuration(); err != nil {
		return errors.Annotate(err, "query-timeout")
	}

	return errors.Trace(c.validate())
}

func parseCommand(args []string) (inspector.ToolCall, error) {
	if len(args) == 0 {
		return inspector.ToolCall{}, errors.New("missing command, expect 'list' or 'schema <table>'")
	}

	switch args[0] {
	case cmdList:
		if len(args) != 1 {
			return inspector.ToolCall{}, errors.Errorf("'%s' takes no arguments", cmdList)
		}
		return inspector.ToolCall{Name: inspector.ToolListTables}, nil
	case cmdSchema:
		if len(args) != 2 {
			return inspector.ToolCall{}, errors.Errorf("'%s' takes exactly one table name", cmdSchema)
		}
		return inspector.ToolCall{
			Name:      inspector.ToolGetSchema,
			Arguments: map[string]string{"name": args[1]},
		}, nil
	default:
		return inspector.ToolCall{}, errors.Errorf("'%s' is not a valid command", args[0])
	}
}

func (c *Config) configFromFile(path string) error {
	return util.StrictDecodeFile(path, "schemactl", c)
}

func (c *Config) validate() error {
	if c.DSN == "" {
		return errors.New("dsn is empty")
	}
	if _, _, err := catalog.ParseDSN(c.DSN); err != nil {
		return errors.Annotate(err, "invalid dsn")
	}
	if c.MaxOpenConns < 0 {
		return errors.Errorf("max-open-conns must not be negative, got %d", c.MaxOpenConns)
	}
	return nil
}
