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

import "github.com/go-logr/logr"

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithComponentsRegistry is an option that sets the components' registry of the Config.
func WithComponentsRegistry(componentsRegistry ComponentRegistry) Option {
	return func(c *Config) error {
		c.ComponentsRegistry = componentsRegistry
		return nil
	}
}

// WithParser is an option that sets the parser of the Config.
func WithParser(parser Parser) Option {
	return func(c *Config) error {
		c.Parser = parser
		return nil
	}
}

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger logr.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithScheduler is an option that sets the scheduler of the Config.
func WithScheduler(scheduler Scheduler) Option {
	return func(c *Config) error {
		c.Scheduler = scheduler
		return nil
	}
}

// WithInstanceId is an option that sets the instance id of the Config.
func WithInstanceId(instanceId string) Option {
	return func(c *Config) error {
		if instanceId != "" {
			c.InstanceId = instanceId
		}
		return nil
	}
}

// WithManagementSinks appends management signal sinks to the Config.
func WithManagementSinks(sinks ...ManagementSink) Option {
	return func(c *Config) error {
		c.ManagementSinks = append(c.ManagementSinks, sinks...)
		return nil
	}
}
