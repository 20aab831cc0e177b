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

package js

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/test/assert"
)

func TestExecute(t *testing.T) {
	engine, err := NewGojaJsEngine(`
		function Modify(attributes) {
			attributes.temperature = attributes.temperature * 2;
			attributes.unit = prefix + "C";
			return attributes;
		}
	`, Options{Logger: logr.Discard(), Vars: map[string]interface{}{"prefix": "deg"}})
	assert.Nil(t, err)
	defer engine.Stop()

	out, err := engine.Execute("Modify", map[string]interface{}{"temperature": 20})
	assert.Nil(t, err)
	result := out.(map[string]interface{})
	assert.Equal(t, int64(40), result["temperature"])
	assert.Equal(t, "degC", result["unit"])

	_, err = engine.Execute("Missing")
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "is not a function"))
}

func TestCompileError(t *testing.T) {
	_, err := NewGojaJsEngine("function (", Options{})
	assert.NotNil(t, err)

	_, err = NewGojaJsEngine("throw new Error('init failed')", Options{})
	assert.NotNil(t, err)
}

func TestTimeout(t *testing.T) {
	engine, err := NewGojaJsEngine(`
		function Loop() { while (true) {} }
		function Ok() { return 1; }
	`, Options{MaxExecutionTime: 50 * time.Millisecond})
	assert.Nil(t, err)
	_, err = engine.Execute("Loop")
	assert.NotNil(t, err)
	//中断后VM可以继续使用
	out, err := engine.Execute("Ok")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), out)
}

func TestConcurrentExecute(t *testing.T) {
	engine, err := NewGojaJsEngine(`function Add(a, b) { return a + b; }`, Options{})
	assert.Nil(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := engine.Execute("Add", i, 1)
			assert.Nil(t, err)
			assert.Equal(t, int64(i+1), out)
		}(i)
	}
	wg.Wait()
}
