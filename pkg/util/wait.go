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
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// WaitUntilTimeout runs fn and waits for it to return, giving up after timeout.
// It reports whether fn returned in time. fn keeps running after a timeout.
func WaitUntilTimeout(name string, fn func(), timeout time.Duration) bool {
	exited := make(chan struct{})
	go func() {
		fn()
		close(exited)
	}()

	select {
	case <-exited:
		return true
	case <-time.After(timeout):
		log.Warn("wait timeout", zap.String("name", name), zap.Duration("timeout", timeout))
		return false
	}
}
