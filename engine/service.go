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
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/runner"
	"github.com/rulego/sigflow/utils/schedule"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ServiceContext 服务配置上下文
type ServiceContext struct {
	// Definition 服务定义
	Definition types.ServiceDef
}

// Service 服务实例，持有路由、由注册器创建的块和管理信号输出
//
// DoConfigure: 创建并配置所有块，然后配置路由
// DoStart:     启动路由，然后并发启动所有块
// DoStop:      按定义顺序停止所有块，然后停止路由
type Service struct {
	*runner.Runner[ServiceContext]
	config         types.Config
	def            types.ServiceDef
	router         *Router
	blocks         map[string]types.RunnableBlock
	order          []string
	ownedScheduler *schedule.CronScheduler
	mu             sync.RWMutex
}

// NewService 创建服务，需要调用DoConfigure和DoStart之后才开始处理信号
func NewService(config types.Config) *Service {
	s := &Service{
		config: config,
		blocks: make(map[string]types.RunnableBlock),
	}
	s.Runner = runner.New[ServiceContext]("service", s, config.Logger)
	return s
}

// Configure 根据服务定义创建块和路由
func (s *Service) Configure(ctx ServiceContext) error {
	def := ctx.Definition
	if def.Id == "" {
		id, _ := uuid.NewV4()
		def.Id = id.String()
	}
	if def.Name == "" {
		def.Name = def.Id
	}
	s.SetName(def.Name)
	logger := s.Logger().WithValues("service", def.Name)

	registry := s.config.ComponentsRegistry
	if registry == nil {
		registry = Registry
	}
	scheduler := s.config.Scheduler
	if scheduler == nil {
		if s.ownedScheduler == nil {
			s.ownedScheduler = schedule.New(logger)
		}
		scheduler = s.ownedScheduler
	}

	router, err := NewRouterOfMode(def.Router,
		WithRouterLogger(logger.WithName("router")),
		WithRouterScheduler(scheduler),
	)
	if err != nil {
		return err
	}

	blocks := make(map[string]types.RunnableBlock, len(def.Blocks))
	routerBlocks := make(map[string]types.Block, len(def.Blocks))
	order := make([]string, 0, len(def.Blocks))
	for _, item := range def.Blocks {
		if item.Name == "" {
			return fmt.Errorf("block name is empty. type=%s", item.Type)
		}
		if _, ok := blocks[item.Name]; ok {
			return fmt.Errorf("duplicate block name. block=%s", item.Name)
		}
		b, err := registry.NewBlock(item.Type)
		if err != nil {
			return fmt.Errorf("%w. block=%s", err, item.Name)
		}
		err = b.DoConfigure(types.BlockContext{
			Name:        item.Name,
			Properties:  item.Properties,
			Router:      router,
			Logger:      logger.WithValues("block", item.Name),
			Scheduler:   scheduler,
			ServiceName: def.Name,
		})
		if err != nil {
			return fmt.Errorf("configure block %s failed: %w", item.Name, err)
		}
		blocks[item.Name] = b
		routerBlocks[item.Name] = b
		order = append(order, item.Name)
	}

	err = router.DoConfigure(types.RouterContext{
		Execution:         def.Execution,
		Blocks:            routerBlocks,
		Settings:          def.Settings,
		MgmtSignalHandler: s.onManagementSignal,
		InstanceId:        s.config.InstanceId,
		ServiceId:         def.Id,
		ServiceName:       def.Name,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.def = def
	s.router = router
	s.blocks = blocks
	s.order = order
	s.mu.Unlock()
	return nil
}

// Start 启动路由，然后并发启动所有块，任一块启动失败则返回第一个错误
func (s *Service) Start() error {
	router := s.Router()
	if router == nil {
		return errors.New("service is not configured")
	}
	if err := router.DoStart(); err != nil {
		return err
	}
	var g errgroup.Group
	for _, b := range s.runnableBlocks() {
		b := b
		g.Go(func() error {
			if err := b.DoStart(); err != nil {
				return fmt.Errorf("start block %s failed: %w", b.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Stop 停止所有块，然后停止路由
func (s *Service) Stop() error {
	var err error
	for _, b := range s.runnableBlocks() {
		b.DoStop()
		if b.Status().IsSet(types.Error) {
			err = multierr.Append(err, fmt.Errorf("block %s stopped with status %s", b.Name(), b.Status()))
		}
	}
	if router := s.Router(); router != nil {
		router.DoStop()
	}
	if s.ownedScheduler != nil {
		s.ownedScheduler.Stop()
		s.ownedScheduler = nil
	}
	return err
}

// Id 服务ID
func (s *Service) Id() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def.Id
}

// Definition 服务定义
func (s *Service) Definition() types.ServiceDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// Router 服务路由，配置前为nil
func (s *Service) Router() *Router {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.router
}

// Block 通过名称获取块
func (s *Service) Block(name string) (types.RunnableBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[name]
	return b, ok
}

// BlockNames 按定义顺序返回块名称
func (s *Service) BlockNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// NotifySignals 以指定块的名义发送信号，用于从外部向执行图注入信号
func (s *Service) NotifySignals(blockName string, signals []*types.Signal, outputId string) error {
	b, ok := s.Block(blockName)
	if !ok {
		return fmt.Errorf("%w. block=%s", types.ErrMissingBlock, blockName)
	}
	router := s.Router()
	if router == nil {
		return fmt.Errorf("%w. block=%s", types.ErrRouterNotStarted, blockName)
	}
	return router.NotifySignals(b, signals, outputId)
}

func (s *Service) runnableBlocks() []types.RunnableBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]types.RunnableBlock, 0, len(s.order))
	for _, name := range s.order {
		list = append(list, s.blocks[name])
	}
	return list
}

// onManagementSignal 记录管理信号并转发到所有输出
func (s *Service) onManagementSignal(block types.Block, signal types.ManagementSignal) {
	if signal.Source == "" && block != nil {
		signal.Source = block.Name()
	}
	logger := s.Logger()
	logger.V(1).Info("management signal", "type", signal.Type, "source", signal.Source, "status", signal.Status)
	for _, sink := range s.config.ManagementSinks {
		if err := sink.Send(signal); err != nil {
			logger.Error(err, "send management signal failed", "type", signal.Type, "source", signal.Source)
		}
	}
}
