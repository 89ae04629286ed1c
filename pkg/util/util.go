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

package util

import (
	"context"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// RetryContext retries the specified `fn` until it returns no error or the context is canceled,
// for at most `retryCount` times.
// The wait time before the `i`th retry is calculated with `sleepTime` * (`backoffFactor` ** i).
func RetryContext(ctx context.Context, retryCount int, sleepTime time.Duration, backoffFactor int, fn func(context.Context) error) error {
	var err error
	for i := 0; i < retryCount; i++ {
		err = fn(ctx)
		if err == nil {
			break
		}
		log.Warn("retry later", zap.Int("attempt", i+1), zap.Duration("wait", sleepTime), zap.Error(err))

		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return err
		}
		sleepTime = sleepTime * time.Duration(backoffFactor)
	}
	return err
}

// StrictDecodeFile decodes the toml file strictly. If any item in confFile file is not mapped
// into the Config struct, issue an error and stop the server from starting.
func StrictDecodeFile(path, component string, cfg interface{}) error {
	metaData, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Trace(err)
	}

	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		err = errors.Errorf("component %s's config file %s contained unknown configuration options: %s",
			component, path, strings.Join(undecodedItems, ", "))
	}

	return errors.Trace(err)
}

// ParseBytes parses a human readable size such as "1MiB" or "512kB".
func ParseBytes(s string) (uint64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Annotatef(err, "invalid size %q", s)
	}
	return n, nil
}

// HumanizeBytes formats a byte count in IEC units, e.g. 1048576 -> "1.0 MiB".
func HumanizeBytes(n uint64) string {
	return humanize.IBytes(n)
}

// AdjustString adjusts v to default value if v is nil
func AdjustString(v *string, defValue string) {
	if len(*v) == 0 {
		*v = defValue
	}
}

// AdjustInt adjusts v to default value if v is nil
func AdjustInt(v *int, defValue int) {
	if *v == 0 {
		*v = defValue
	}
}
