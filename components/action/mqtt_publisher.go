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

//块配置示例：
//	{
//	  "name": "publish",
//	  "type": "mqttPublisher",
//	  "properties": {
//	    "server": "tcp://127.0.0.1:1883",
//	    "topic": "/device/${type}"
//	  }
//	}
// 发布成功的信号从success端口输出，发布失败的信号从failure端口输出

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
	"github.com/rulego/sigflow/utils/json"
	"github.com/rulego/sigflow/utils/maps"
	"github.com/rulego/sigflow/utils/mqtt"
)

const (
	// OutputSuccess 发布成功的信号
	OutputSuccess = "success"
	// OutputFailure 发布失败的信号
	OutputFailure = "failure"
	// TopicTypePlaceholder 主题中的信号类型占位符
	TopicTypePlaceholder = "${type}"
)

// MqttPublisherTerminals 默认输入端口，success为默认输出端口
var MqttPublisherTerminals = terminal.MustNewType("mqttPublisher", block.Terminals,
	terminal.NewOutput(OutputSuccess, terminal.AsDefault(), terminal.WithOrder(1)),
	terminal.NewOutput(OutputFailure, terminal.WithOrder(2)),
)

func init() {
	Registry.Add(NewMqttPublisher())
}

// Publisher 发布数据到主题
type Publisher interface {
	Publish(topic string, qos byte, data []byte) error
}

// DialFunc 连接broker
type DialFunc func(ctx context.Context, config mqtt.Config, logger logr.Logger) (Publisher, error)

// MqttPublisherConfiguration 块配置
type MqttPublisherConfiguration struct {
	// Server broker地址
	Server string
	// Topic 发布主题，支持${type}占位符
	Topic    string
	Username string
	Password string
	Qos      uint8
	ClientId string
	// ConnectTimeout 启动时连接broker的超时时间
	ConnectTimeout time.Duration
	// PublishTimeout 等待broker确认的超时时间
	PublishTimeout time.Duration
}

func (x *MqttPublisherConfiguration) ToMqttConfig() mqtt.Config {
	return mqtt.Config{
		Server:         x.Server,
		Username:       x.Username,
		Password:       x.Password,
		QOS:            x.Qos,
		ClientID:       x.ClientId,
		PublishTimeout: x.PublishTimeout,
	}
}

// MqttPublisher 把每个信号以json格式发布到MQTT主题
type MqttPublisher struct {
	*block.Base
	Config    MqttPublisherConfiguration
	dial      DialFunc
	publisher Publisher
	mu        sync.RWMutex
}

// NewMqttPublisher 创建MQTT发布块
func NewMqttPublisher() *MqttPublisher {
	x := &MqttPublisher{
		Config: MqttPublisherConfiguration{ConnectTimeout: 10 * time.Second},
		dial:   dialMqtt,
	}
	x.Base = block.NewBase(x, MqttPublisherTerminals)
	return x
}

func dialMqtt(ctx context.Context, config mqtt.Config, logger logr.Logger) (Publisher, error) {
	return mqtt.NewClient(ctx, config, logger)
}

func (x *MqttPublisher) New() types.Component {
	n := NewMqttPublisher()
	n.dial = x.dial
	return n
}

func (x *MqttPublisher) Configure(ctx types.BlockContext) error {
	if err := maps.Map2Struct(ctx.Properties, &x.Config); err != nil {
		return err
	}
	if x.Config.Server == "" {
		return errors.New("server can not be empty")
	}
	if x.Config.Topic == "" {
		return errors.New("topic can not be empty")
	}
	if x.Config.Qos > 2 {
		return errors.New("qos must be 0, 1 or 2")
	}
	return nil
}

// Start 连接broker，超时则启动失败
func (x *MqttPublisher) Start() error {
	timeout := x.Config.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	publisher, err := x.dial(ctx, x.Config.ToMqttConfig(), x.Logger())
	if err != nil {
		return err
	}
	x.mu.Lock()
	x.publisher = publisher
	x.mu.Unlock()
	return nil
}

func (x *MqttPublisher) Stop() error {
	x.mu.Lock()
	publisher := x.publisher
	x.publisher = nil
	x.mu.Unlock()
	if closer, ok := publisher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Topic 信号对应的发布主题
func (x *MqttPublisher) Topic(signal *types.Signal) string {
	return strings.ReplaceAll(x.Config.Topic, TopicTypePlaceholder, signal.Type)
}

// ProcessSignals 逐个发布信号，按发布结果分别发送到success和failure端口
func (x *MqttPublisher) ProcessSignals(signals []*types.Signal) error {
	x.mu.RLock()
	publisher := x.publisher
	x.mu.RUnlock()

	var success, failure []*types.Signal
	for _, signal := range signals {
		if signal == nil {
			continue
		}
		if err := x.publish(publisher, signal); err != nil {
			x.Logger().Error(err, "publish signal failed", "id", signal.Id, "topic", x.Topic(signal))
			failure = append(failure, signal)
		} else {
			success = append(success, signal)
		}
	}
	if err := x.NotifySignals(success, OutputSuccess); err != nil {
		return err
	}
	return x.NotifySignals(failure, OutputFailure)
}

func (x *MqttPublisher) publish(publisher Publisher, signal *types.Signal) error {
	if publisher == nil {
		return errors.New("mqtt publisher is not connected")
	}
	data, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return publisher.Publish(x.Topic(signal), x.Config.Qos, data)
}
