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
	"github.com/go-logr/logr"
	"github.com/gofrs/uuid/v5"
)

// Config defines the configuration for a service.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger logr.Logger
	// Scheduler runs recurring jobs such as diagnostic flushes, defaulting to a cron backed scheduler.
	Scheduler Scheduler
	// ComponentsRegistry is the block registry, defaulting to `engine.Registry`.
	ComponentsRegistry ComponentRegistry
	// Parser is the service definition parser, defaulting to `engine.JsonParser`.
	Parser Parser
	// InstanceId identifies this running instance in management signals.
	InstanceId string
	// ManagementSinks receive every management signal emitted by the router and its blocks.
	ManagementSinks []ManagementSink
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	uuId, _ := uuid.NewV4()
	c := &Config{
		Logger:     DefaultLogger(),
		InstanceId: uuId.String(),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
