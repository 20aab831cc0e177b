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

package maps

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Map2Struct Decode takes an input structure and uses reflection to translate it to
// the output structure. output must be a pointer to a map or struct.
// Input is weakly typed: "5" decodes into an int, "true" into a bool and "5s" into a time.Duration.
func Map2Struct(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// Get 通过点分隔的字段路径获取嵌套map的值，不存在返回nil
func Get(input interface{}, fieldName string) interface{} {
	if fieldName == "" {
		return nil
	}
	current := input
	for _, key := range strings.Split(fieldName, ".") {
		if key == "" {
			return nil
		}
		switch v := current.(type) {
		case map[string]interface{}:
			current = v[key]
		case map[string]string:
			value, ok := v[key]
			if !ok {
				return nil
			}
			current = value
		default:
			return nil
		}
	}
	return current
}
