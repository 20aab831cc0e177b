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

// Package transform provides blocks that rewrite signals as they flow through the execution graph.
//
// Package transform 提供在执行图中修改信号的块。
//
// Available blocks:
// 可用的块：
//
//   - JsModifier: JavaScript-based attribute rewriting with goja
//     基于 JavaScript 的信号属性修改
//
// Each block is registered with the Registry. Reference it in a service definition by its Type:
//
//	{
//	  "name": "celsius",
//	  "type": "jsModifier",
//	  "properties": {
//	    "script": "attributes.celsius = (attributes.fahrenheit - 32) / 1.8; return attributes;"
//	  }
//	}
package transform

import "github.com/rulego/sigflow/api/types"

// Registry 本包内置块的注册列表
var Registry = &types.SafeComponentSlice{}
