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
	"fmt"
	"sort"

	"github.com/rulego/sigflow/api/types"
)

// receiverRef 解析后的接收者引用，input为空表示使用接收者默认输入端口
type receiverRef struct {
	name  string
	input string
}

// outputReceivers 一个输出端口的接收者列表
// implicit 为true表示列表形式，输出端口取发送者的默认输出端口
type outputReceivers struct {
	outputId string
	implicit bool
	refs     []receiverRef
}

// ResolveExecution 把执行图解析为发送者名称->接收边列表
// 同一发送者的多个执行节点按配置顺序追加
func ResolveExecution(execution []types.BlockExecution, blocks map[string]types.Block) (map[string][]types.BlockReceiverData, error) {
	table := make(map[string][]types.BlockReceiverData)
	for _, item := range execution {
		sender, ok := blocks[item.Name]
		if !ok || sender == nil {
			return nil, fmt.Errorf("%w. block=%s", types.ErrMissingBlock, item.Name)
		}
		groups, err := parseReceivers(item.Receivers)
		if err != nil {
			return nil, fmt.Errorf("%w. block=%s", err, item.Name)
		}
		for _, group := range groups {
			outputId := group.outputId
			if group.implicit {
				id, ok := sender.DefaultOutput()
				if !ok {
					return nil, fmt.Errorf("%w. block=%s has no default output", types.ErrInvalidBlockOutput, sender.Name())
				}
				outputId = id
			}
			if !sender.IsOutputValid(outputId) {
				return nil, fmt.Errorf("%w. block=%s, output=%s", types.ErrInvalidBlockOutput, sender.Name(), outputId)
			}
			for _, ref := range group.refs {
				edge, err := resolveReceiver(ref, blocks)
				if err != nil {
					return nil, err
				}
				edge.OutputId = outputId
				table[sender.Name()] = append(table[sender.Name()], edge)
			}
		}
	}
	return table, nil
}

func resolveReceiver(ref receiverRef, blocks map[string]types.Block) (types.BlockReceiverData, error) {
	receiver, ok := blocks[ref.name]
	if !ok || receiver == nil {
		return types.BlockReceiverData{}, fmt.Errorf("%w. block=%s", types.ErrMissingBlock, ref.name)
	}
	inputId := ref.input
	if inputId == "" {
		id, ok := receiver.DefaultInput()
		if !ok {
			return types.BlockReceiverData{}, fmt.Errorf("%w. block=%s has no default input", types.ErrInvalidBlockInput, receiver.Name())
		}
		inputId = id
	}
	if !receiver.IsInputValid(inputId) {
		return types.BlockReceiverData{}, fmt.Errorf("%w. block=%s, input=%s", types.ErrInvalidBlockInput, receiver.Name(), inputId)
	}
	convention, err := types.DeliveryConventionOf(receiver)
	if err != nil {
		return types.BlockReceiverData{}, fmt.Errorf("%w. block=%s", err, receiver.Name())
	}
	return types.BlockReceiverData{
		Block:      receiver,
		InputId:    inputId,
		Convention: convention,
	}, nil
}

// parseReceivers 解析接收者描述，映射形式按输出端口ID排序
func parseReceivers(receivers interface{}) ([]outputReceivers, error) {
	switch v := receivers.(type) {
	case map[string]interface{}:
		groups := make([]outputReceivers, 0, len(v))
		for _, outputId := range sortedKeys(v) {
			refs, err := parseReceiverList(v[outputId])
			if err != nil {
				return nil, err
			}
			groups = append(groups, outputReceivers{outputId: outputId, refs: refs})
		}
		return groups, nil
	case map[string][]string:
		groups := make([]outputReceivers, 0, len(v))
		for _, outputId := range sortedKeys(v) {
			refs, err := parseReceiverList(v[outputId])
			if err != nil {
				return nil, err
			}
			groups = append(groups, outputReceivers{outputId: outputId, refs: refs})
		}
		return groups, nil
	case map[string][]types.ReceiverRef:
		groups := make([]outputReceivers, 0, len(v))
		for _, outputId := range sortedKeys(v) {
			refs, err := parseReceiverList(v[outputId])
			if err != nil {
				return nil, err
			}
			groups = append(groups, outputReceivers{outputId: outputId, refs: refs})
		}
		return groups, nil
	default:
		refs, err := parseReceiverList(receivers)
		if err != nil {
			return nil, err
		}
		return []outputReceivers{{implicit: true, refs: refs}}, nil
	}
}

func parseReceiverList(list interface{}) ([]receiverRef, error) {
	switch v := list.(type) {
	case nil:
		return nil, nil
	case []string:
		refs := make([]receiverRef, len(v))
		for i, name := range v {
			refs[i] = receiverRef{name: name}
		}
		return refs, nil
	case []types.ReceiverRef:
		refs := make([]receiverRef, len(v))
		for i, ref := range v {
			refs[i] = receiverRef{name: ref.Name, input: ref.Input}
		}
		return refs, nil
	case []map[string]interface{}:
		refs := make([]receiverRef, 0, len(v))
		for _, item := range v {
			ref, err := parseReceiverItem(item)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	case []interface{}:
		refs := make([]receiverRef, 0, len(v))
		for _, item := range v {
			ref, err := parseReceiverItem(item)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("%w: unsupported receivers %T", types.ErrMalformedReceiver, list)
	}
}

func parseReceiverItem(item interface{}) (receiverRef, error) {
	switch v := item.(type) {
	case string:
		return receiverRef{name: v}, nil
	case types.ReceiverRef:
		return receiverRef{name: v.Name, input: v.Input}, nil
	case *types.ReceiverRef:
		if v == nil {
			return receiverRef{}, fmt.Errorf("%w: nil receiver", types.ErrMalformedReceiver)
		}
		return receiverRef{name: v.Name, input: v.Input}, nil
	case map[string]interface{}:
		name, nameOk := v["name"].(string)
		input, inputOk := v["input"].(string)
		if !nameOk || !inputOk {
			return receiverRef{}, fmt.Errorf("%w: receiver object requires string name and input, got %v", types.ErrMalformedReceiver, v)
		}
		return receiverRef{name: name, input: input}, nil
	case map[string]string:
		name, nameOk := v["name"]
		input, inputOk := v["input"]
		if !nameOk || !inputOk {
			return receiverRef{}, fmt.Errorf("%w: receiver object requires name and input, got %v", types.ErrMalformedReceiver, v)
		}
		return receiverRef{name: name, input: input}, nil
	default:
		return receiverRef{}, fmt.Errorf("%w: unsupported receiver %T", types.ErrMalformedReceiver, item)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
