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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rulego/sigflow"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/engine"
	"github.com/rulego/sigflow/mgmt"
	"github.com/rulego/sigflow/utils/fs"
)

const (
	version = "1.0.0"
)

var (
	//是否是查询版本
	ver bool
	//服务定义文件
	configFile string
	//是否打印debug日志
	debug bool
	//管理信号发布的mqtt broker地址
	mqttServer string
	//管理信号发布主题
	mqttTopic string
)

func init() {
	flag.StringVar(&configFile, "c", "", "服务定义文件(.json或者.toml)")
	flag.BoolVar(&ver, "v", false, "打印版本")
	flag.BoolVar(&debug, "debug", false, "打印debug日志")
	flag.StringVar(&mqttServer, "mqtt", "", "管理信号发布的mqtt broker地址，例如：tcp://127.0.0.1:1883")
	flag.StringVar(&mqttTopic, "mqtt-topic", mgmt.DefaultTopic, "管理信号发布主题")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("SigFlow v%s\n", version)
		os.Exit(0)
	}
	logger := newLogger(debug)
	if err := run(logger); err != nil {
		logger.Error(err, "sigflow exited")
		os.Exit(1)
	}
}

func run(logger logr.Logger) error {
	if configFile == "" {
		return fmt.Errorf("service definition file is required, use -c")
	}
	def := fs.LoadFile(configFile)
	if def == nil {
		return fmt.Errorf("can not read service definition file: %s", configFile)
	}

	sinks := []types.ManagementSink{mgmt.NewLogSink(logger.WithName("mgmt"))}
	if mqttServer != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sink, err := mgmt.DialMqttSink(ctx, mgmt.MqttConfiguration{Server: mqttServer, Topic: mqttTopic}, logger.WithName("mqtt"))
		cancel()
		if err != nil {
			return fmt.Errorf("connect mqtt broker %s failed: %w", mqttServer, err)
		}
		defer sink.Close()
		sinks = append(sinks, sink)
	}

	config := sigflow.NewConfig(
		types.WithLogger(logger),
		types.WithParser(engine.ParserOf(filepath.Ext(configFile))),
		types.WithManagementSinks(sinks...),
	)
	service, err := sigflow.NewService(def, config)
	if err != nil {
		return err
	}
	logger.Info("service started", "file", configFile, "id", service.Id(), "blocks", service.BlockNames())

	sigs := make(chan os.Signal, 1)
	// 监听系统信号，包括中断信号和终止信号
	signal.Notify(sigs, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	service.DoStop()
	logger.Info("service stopped", "id", service.Id(), "status", service.Status().String())
	return nil
}

// 初始化日志记录器
func newLogger(debug bool) logr.Logger {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	zerologr.SetMaxV(0)
	level := zerolog.InfoLevel
	if debug {
		zerologr.SetMaxV(1)
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	return zerologr.New(&zl)
}
