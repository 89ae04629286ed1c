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
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// SetupSignalHandler calls shutdownFunc on the first SIGHUP, SIGINT, SIGTERM or
// SIGQUIT, SIGUSR1 dumps the goroutine stacks.
func SetupSignalHandler(shutdownFunc func(sig os.Signal)) {
	usrDefSignalChan := make(chan os.Signal, 1)

	signal.Notify(usrDefSignalChan, syscall.SIGUSR1)
	go func() {
		buf := make([]byte, 1<<16)
		for {
			sig := <-usrDefSignalChan
			if sig == syscall.SIGUSR1 {
				stackLen := runtime.Stack(buf, true)
				log.Info("got signal to dump goroutine stack",
					zap.Stringer("signal", sig),
					zap.ByteString("stack", buf[:stackLen]))
			}
		}
	}()

	closeSignalChan := make(chan os.Signal, 1)
	signal.Notify(closeSignalChan,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		sig := <-closeSignalChan
		log.Info("got signal to exit", zap.Stringer("signal", sig))
		shutdownFunc(sig)
	}()
}
