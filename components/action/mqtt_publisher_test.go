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
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
	"github.com/rulego/sigflow/utils/json"
	"github.com/rulego/sigflow/utils/mqtt"
)

type published struct {
	topic string
	qos   byte
	data  []byte
}

type fakePublisher struct {
	messages []published
	failType string
	closed   bool
	mu       sync.Mutex
}

func (p *fakePublisher) Publish(topic string, qos byte, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failType != "" && topic == "/device/"+p.failType {
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, published{topic: topic, qos: qos, data: data})
	return nil
}

func (p *fakePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newTestPublisher(publisher *fakePublisher, dialErr error) (*MqttPublisher, *mqtt.Config) {
	var dialed mqtt.Config
	b := NewMqttPublisher()
	b.dial = func(ctx context.Context, config mqtt.Config, logger logr.Logger) (Publisher, error) {
		dialed = config
		if dialErr != nil {
			return nil, dialErr
		}
		return publisher, nil
	}
	return b, &dialed
}

func TestMqttPublisher(t *testing.T) {
	var targetBlockType = "mqttPublisher"
	properties := types.Configuration{
		"server": "tcp://127.0.0.1:1883",
		"topic":  "/device/${type}",
		"qos":    1,
	}

	t.Run("Terminals", func(t *testing.T) {
		b := NewMqttPublisher()
		assert.Equal(t, targetBlockType, b.Type())
		output, ok := b.DefaultOutput()
		assert.True(t, ok)
		assert.Equal(t, OutputSuccess, output)
		assert.True(t, b.IsOutputValid(OutputFailure))
	})

	t.Run("ConfigureError", func(t *testing.T) {
		for _, item := range []types.Configuration{
			{"topic": "/device"},
			{"server": "tcp://127.0.0.1:1883"},
			{"server": "tcp://127.0.0.1:1883", "topic": "/device", "qos": 3},
		} {
			_, err := test.CreateAndConfigureBlock(targetBlockType, "publish", item, Registry, test.NewTestRouter(nil))
			assert.NotNil(t, err)
		}
	})

	t.Run("DialError", func(t *testing.T) {
		b, _ := newTestPublisher(nil, errors.New("connection refused"))
		assert.Nil(t, b.DoConfigure(test.NewBlockContext("publish", properties, test.NewTestRouter(nil))))
		assert.NotNil(t, b.DoStart())
		assert.True(t, b.Status().IsSet(types.Error))
	})

	t.Run("Publish", func(t *testing.T) {
		publisher := &fakePublisher{failType: "broken"}
		router := test.NewTestRouter(nil)
		b, dialed := newTestPublisher(publisher, nil)
		assert.Nil(t, b.DoConfigure(test.NewBlockContext("publish", properties, router)))
		assert.Nil(t, b.DoStart())
		assert.Equal(t, "tcp://127.0.0.1:1883", dialed.Server)
		assert.Equal(t, uint8(1), dialed.QOS)

		ok := types.NewSignal("telemetry", types.Attributes{"temperature": 60})
		broken := types.NewSignal("broken", nil)
		assert.Nil(t, b.ProcessSignals([]*types.Signal{ok, broken}))

		assert.Equal(t, 1, len(publisher.messages))
		assert.Equal(t, "/device/telemetry", publisher.messages[0].topic)
		assert.Equal(t, byte(1), publisher.messages[0].qos)
		var decoded types.Signal
		assert.Nil(t, json.Unmarshal(publisher.messages[0].data, &decoded))
		assert.Equal(t, ok.Id, decoded.Id)

		var success, failure []*types.Signal
		for _, n := range router.Notifications() {
			switch n.OutputId {
			case OutputSuccess:
				success = append(success, n.Signals...)
			case OutputFailure:
				failure = append(failure, n.Signals...)
			}
		}
		assert.Equal(t, []*types.Signal{ok}, success)
		assert.Equal(t, []*types.Signal{broken}, failure)

		b.DoStop()
		assert.True(t, publisher.closed)
	})
}
