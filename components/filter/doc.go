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

// Package filter provides blocks that route signals to different outputs based on conditions.
//
// - ExprFilter: evaluates an expr-lang expression per signal and sends it to the `true` or `false` output
//
// Each block is registered with the Registry, allowing it to be used in service definitions
// by referencing its Type. For example:
//
//	{
//	  "name": "hot",
//	  "type": "exprFilter",
//	  "properties": {
//	    "expr": "attributes.temperature > 50"
//	  }
//	}
package filter

import "github.com/rulego/sigflow/api/types"

// Registry 本包内置块的注册列表
var Registry = &types.SafeComponentSlice{}
