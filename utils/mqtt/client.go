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

// Package mqtt provides the MQTT publisher used to forward management signals to a broker.
//
// It wraps the Paho MQTT library:
// - Config: connection settings, including TLS and authentication
// - Client: connects with retry until the context is done and publishes payloads
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"
	"github.com/gofrs/uuid/v5"
)

// DefaultPublishTimeout 等待broker确认的最长时间
const DefaultPublishTimeout = 5 * time.Second

// ErrPublishTimeout 发布超时
var ErrPublishTimeout = errors.New("mqtt publish timeout")

// Config 客户端配置
type Config struct {
	//mqtt broker 地址
	Server string
	//用户名
	Username string
	//密码
	Password string
	//重连重试间隔
	MaxReconnectInterval time.Duration
	//发布超时，0使用DefaultPublishTimeout
	PublishTimeout time.Duration
	QOS            uint8
	CleanSession   bool
	//client Id
	ClientID    string
	CAFile      string
	CertFile    string
	CertKeyFile string
}

// Client mqtt发布客户端
type Client struct {
	client  paho.Client
	timeout time.Duration
	logger  logr.Logger
}

// NewClient 创建一个MQTT客户端实例，连接失败时每2秒重试，直到ctx结束
func NewClient(ctx context.Context, conf Config, logger logr.Logger) (*Client, error) {
	if conf.Server == "" {
		return nil, errors.New("mqtt server can not be empty")
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(conf.Server)
	opts.SetUsername(conf.Username)
	opts.SetPassword(conf.Password)
	opts.SetCleanSession(conf.CleanSession)
	if conf.ClientID == "" {
		//随机clientId
		id, _ := uuid.NewV4()
		opts.SetClientID("sigflow/" + id.String()[:8])
	} else {
		opts.SetClientID(conf.ClientID)
	}
	if conf.MaxReconnectInterval <= 0 {
		conf.MaxReconnectInterval = time.Second * 60
	}
	opts.SetMaxReconnectInterval(conf.MaxReconnectInterval)
	opts.SetConnectionLostHandler(func(c paho.Client, reason error) {
		logger.Error(reason, "mqtt connection lost", "server", conf.Server)
	})

	tlsconfig, err := newTLSConfig(conf.CAFile, conf.CertFile, conf.CertKeyFile)
	if err != nil {
		return nil, fmt.Errorf("error loading mqtt certificate files,ca_cert=%s,tls_cert=%s,tls_key=%s: %w", conf.CAFile, conf.CertFile, conf.CertKeyFile, err)
	}
	//tls
	if tlsconfig != nil {
		opts.SetTLSConfig(tlsconfig)
	}
	b := newClient(paho.NewClient(opts), conf.PublishTimeout, logger)

	for {
		if token := b.client.Connect(); token.Wait() && token.Error() != nil {
			logger.V(1).Info("mqtt connect failed, retrying", "server", conf.Server, "error", token.Error().Error())
			select {
			case <-ctx.Done():
				//context被取消或超时，返回错误
				return nil, token.Error()
			case <-time.After(2 * time.Second):
				//定时器到期，继续重试
			}
		} else {
			break
		}
	}
	return b, nil
}

func newClient(client paho.Client, timeout time.Duration, logger logr.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Client{client: client, timeout: timeout, logger: logger}
}

// Publish 发布数据，等待broker确认或者超时
func (b *Client) Publish(topic string, qos byte, data []byte) error {
	token := b.client.Publish(topic, qos, false, data)
	if !token.WaitTimeout(b.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// IsConnected 是否已连接
func (b *Client) IsConnected() bool {
	return b.client.IsConnected()
}

// Close 断开连接
func (b *Client) Close() error {
	b.client.Disconnect(500)
	return nil
}

func newTLSConfig(CAFile, certFile, certKeyFile string) (*tls.Config, error) {
	if CAFile == "" && certFile == "" && certKeyFile == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{}

	// Import trusted certificates from CAFile.pem.
	if CAFile != "" {
		caCert, err := os.ReadFile(CAFile)
		if err != nil {
			return nil, err
		}
		certPool := x509.NewCertPool()
		certPool.AppendCertsFromPEM(caCert)

		tlsConfig.RootCAs = certPool
	}

	// Import certificate and the key
	if certFile != "" && certKeyFile != "" {
		kp, err := tls.LoadX509KeyPair(certFile, certKeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{kp}
	}
	return tlsConfig, nil
}
