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

// Package action provides source and sink blocks for the signal flow engine.
//
// These blocks start or end an execution graph:
//
// - LogBlock: logs every received signal together with the input it arrived on
// - Simulator: emits generated signals on a fixed interval while started
// - MqttPublisher: publishes every received signal as json to an MQTT topic
//
// Each block is registered with the Registry, allowing it to be used in service
// definitions by referencing its Type. For example:
//
//	{
//	  "name": "source",
//	  "type": "simulator",
//	  "properties": {
//	    "interval": "500ms",
//	    "count": 2,
//	    "signalType": "telemetry",
//	    "attributes": {"temperature": 21.5}
//	  }
//	}
package action

import "github.com/rulego/sigflow/api/types"

// Registry 本包内置块的注册列表
var Registry = &types.SafeComponentSlice{}
