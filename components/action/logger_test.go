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

package action

import (
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

type logCapture struct {
	lines []string
	mu    sync.Mutex
}

func (c *logCapture) logger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, args)
	}, funcr.Options{Verbosity: verbosity})
}

func (c *logCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestLogBlock(t *testing.T) {
	var targetBlockType = "logger"

	t.Run("Terminals", func(t *testing.T) {
		b := NewLogBlock()
		assert.Equal(t, targetBlockType, b.Type())
		input, ok := b.DefaultInput()
		assert.True(t, ok)
		assert.Equal(t, LoggerInput, input)
		assert.True(t, b.IsInputValid(LoggerErrorInput))
		conv, err := types.DeliveryConventionOf(b)
		assert.Nil(t, err)
		assert.Equal(t, types.InputAwareDelivery, conv)
	})

	t.Run("ConfigureError", func(t *testing.T) {
		_, err := test.CreateAndConfigureBlock(targetBlockType, "log", types.Configuration{
			"level": "trace",
		}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)
	})

	t.Run("Info", func(t *testing.T) {
		capture := &logCapture{}
		b, err := test.CreateBlock(targetBlockType, Registry)
		assert.Nil(t, err)
		ctx := test.NewBlockContext("log", types.Configuration{"prefix": "temperature "}, test.NewTestRouter(nil))
		ctx.Logger = capture.logger(0)
		assert.Nil(t, b.DoConfigure(ctx))

		lb := b.(*LogBlock)
		assert.Nil(t, lb.ProcessInputSignals(test.Signals(2), LoggerInput))
		assert.Nil(t, lb.ProcessInputSignals(test.Signals(1), LoggerErrorInput))

		lines := capture.Lines()
		var signalLines []string
		for _, line := range lines {
			if strings.Contains(line, "temperature signal") {
				signalLines = append(signalLines, line)
			}
		}
		assert.Equal(t, 3, len(signalLines))
		assert.True(t, strings.Contains(signalLines[0], `"input"="in"`))
		assert.True(t, strings.Contains(signalLines[2], `"input"="error"`))
	})

	t.Run("Debug", func(t *testing.T) {
		capture := &logCapture{}
		b, err := test.CreateBlock(targetBlockType, Registry)
		assert.Nil(t, err)
		ctx := test.NewBlockContext("log", types.Configuration{"level": "DEBUG"}, test.NewTestRouter(nil))
		ctx.Logger = capture.logger(0)
		assert.Nil(t, b.DoConfigure(ctx))

		assert.Nil(t, b.(*LogBlock).ProcessInputSignals(test.Signals(2), LoggerInput))
		for _, line := range capture.Lines() {
			assert.False(t, strings.Contains(line, `"msg"="signal"`))
		}
	})
	t.Run("Fields", func(t *testing.T) {
		capture := &logCapture{}
		b, err := test.CreateBlock(targetBlockType, Registry)
		assert.Nil(t, err)
		ctx := test.NewBlockContext("log", types.Configuration{"fields": "location.city,missing"}, test.NewTestRouter(nil))
		ctx.Logger = capture.logger(0)
		assert.Nil(t, b.DoConfigure(ctx))
		assert.Equal(t, []string{"location.city", "missing"}, b.(*LogBlock).Config.Fields)

		signal := types.NewSignal("telemetry", types.Attributes{
			"temperature": 21,
			"location":    map[string]interface{}{"city": "Guangzhou"},
		})
		assert.Nil(t, b.(*LogBlock).ProcessInputSignals([]*types.Signal{signal}, LoggerInput))
		var lines []string
		for _, line := range capture.Lines() {
			if strings.Contains(line, `"msg"="signal"`) {
				lines = append(lines, line)
			}
		}
		assert.Equal(t, 1, len(lines))
		assert.True(t, strings.Contains(lines[0], `"location.city":"Guangzhou"`))
		assert.False(t, strings.Contains(lines[0], "temperature"))
	})
}
