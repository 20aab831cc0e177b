/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// DefaultLogger returns a `logr.Logger` writing to stdout, info level only
func DefaultLogger() logr.Logger {
	return NewStdLogger(0)
}

// NewStdLogger returns a `logr.Logger` writing to stdout.
// verbosity>=1 enables debug messages.
func NewStdLogger(verbosity int) logr.Logger {
	std := log.New(os.Stdout, "", log.LstdFlags)
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			std.Printf("%s: %s\n", prefix, args)
		} else {
			std.Println(args)
		}
	}, funcr.Options{Verbosity: verbosity})
}
