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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
)

var empty = ""
var _ toml.TextMarshaler = Duration(empty)
var _ toml.TextUnmarshaler = (*Duration)(&empty)
var _ json.Marshaler = Duration(empty)
var _ json.Unmarshaler = (*Duration)(&empty)

// Duration is a wrapper of time.Duration for TOML and JSON.
// it can be parsed to both integer and string
// integer 30 will be parsed to 30s
// string 10m will be parsed to 10m
// the empty string means zero, i.e. unset
type Duration string

// MarshalJSON returns the duration as a JSON string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, d)), nil
}

// UnmarshalJSON parses a JSON string into the duration.
func (d *Duration) UnmarshalJSON(text []byte) error {
	s, err := strconv.Unquote(string(text))
	if err != nil {
		return errors.WithStack(err)
	}
	td := Duration(s)
	_, err = td.ParseDuration()
	if err != nil {
		return errors.WithStack(err)
	}
	*d = Duration(s)
	return nil
}

// UnmarshalText parses a TOML string into the duration.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	td := Duration(text)
	_, err = td.ParseDuration()
	if err != nil {
		return errors.WithStack(err)
	}
	*d = Duration(text)
	return nil
}

// MarshalText returns the duration as a JSON string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// ParseDuration parses the duration. The default unit is second.
func (d Duration) ParseDuration() (time.Duration, error) {
	s := string(d)
	if len(s) == 0 {
		return 0, nil
	}
	t, err := strconv.ParseUint(s, 10, 64)
	if err == nil {
		return time.Duration(t) * time.Second, nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Annotatef(err, "unsupported duration %s, etc: use 30 for 30 seconds, 2m for 2 minutes", s)
	}
	if dur < 0 {
		return 0, errors.Errorf("negative duration %s", s)
	}
	return dur, nil
}

// String implements fmt.Stringer and flag.Value.
func (d Duration) String() string {
	return string(d)
}

// Set implements flag.Value, so a Duration can be bound to a flag directly.
func (d *Duration) Set(s string) error {
	return d.UnmarshalText([]byte(s))
}
