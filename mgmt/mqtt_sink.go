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

package mgmt

import (
	"context"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/utils/json"
	"github.com/rulego/sigflow/utils/mqtt"
)

const (
	// DefaultTopic 默认发布主题
	DefaultTopic = "sigflow/management/${type}"
	// TypePlaceholder 主题中的管理信号类型占位符
	TypePlaceholder = "${type}"
)

var _ types.ManagementSink = (*MqttSink)(nil)

// Publisher 发布数据到主题
type Publisher interface {
	Publish(topic string, qos byte, data []byte) error
}

// MqttConfiguration MQTT输出配置
type MqttConfiguration struct {
	// Server broker地址，例如：tcp://127.0.0.1:1883
	Server string
	// Topic 发布主题，支持${type}占位符
	Topic string
	// Qos 0、1、2
	Qos uint8
	// ClientId 为空则随机生成
	ClientId string
	Username string
	Password string
}

// MqttSink 把管理信号以json格式发布到MQTT主题
type MqttSink struct {
	publisher Publisher
	topic     string
	qos       byte
}

// NewMqttSink 使用已有的发布者创建MQTT输出
func NewMqttSink(publisher Publisher, topic string, qos byte) *MqttSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MqttSink{publisher: publisher, topic: topic, qos: qos}
}

// DialMqttSink 连接broker并创建MQTT输出，连接失败时重试直到ctx结束
func DialMqttSink(ctx context.Context, config MqttConfiguration, logger logr.Logger) (*MqttSink, error) {
	client, err := mqtt.NewClient(ctx, mqtt.Config{
		Server:   config.Server,
		Username: config.Username,
		Password: config.Password,
		QOS:      config.Qos,
		ClientID: config.ClientId,
	}, logger)
	if err != nil {
		return nil, err
	}
	return NewMqttSink(client, config.Topic, config.Qos), nil
}

// Topic 管理信号对应的发布主题
func (s *MqttSink) Topic(signal types.ManagementSignal) string {
	return strings.ReplaceAll(s.topic, TypePlaceholder, signal.Type)
}

func (s *MqttSink) Send(signal types.ManagementSignal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return s.publisher.Publish(s.Topic(signal), s.qos, data)
}

// Close 关闭发布者
func (s *MqttSink) Close() error {
	if closer, ok := s.publisher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
