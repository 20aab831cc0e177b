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

package engine

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/utils/json"
)

var (
	_ types.Parser = (*JsonParser)(nil)
	_ types.Parser = (*TomlParser)(nil)
)

// JsonParser Json
type JsonParser struct {
}

// DecodeService 通过json解析服务定义
func (p *JsonParser) DecodeService(dsl []byte) (types.ServiceDef, error) {
	var def types.ServiceDef
	err := json.Unmarshal(dsl, &def)
	return def, err
}

func (p *JsonParser) EncodeService(def types.ServiceDef) ([]byte, error) {
	if v, err := json.Marshal(def); err != nil {
		return nil, err
	} else {
		//格式化Json
		return json.Format(v)
	}
}

// TomlParser Toml
type TomlParser struct {
}

// DecodeService 通过toml解析服务定义
func (p *TomlParser) DecodeService(dsl []byte) (types.ServiceDef, error) {
	var def types.ServiceDef
	if _, err := toml.Decode(string(dsl), &def); err != nil {
		return def, fmt.Errorf("invalid toml service definition: %w", err)
	}
	return def, nil
}

func (p *TomlParser) EncodeService(def types.ServiceDef) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(def); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParserOf 根据文件扩展名选择解析器：.toml使用TomlParser，其他使用JsonParser
func ParserOf(ext string) types.Parser {
	switch ext {
	case ".toml", ".tml":
		return &TomlParser{}
	default:
		return &JsonParser{}
	}
}
