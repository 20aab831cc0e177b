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

// Package assert 测试断言工具
package assert

import (
	"bytes"
	"reflect"
	"testing"
)

// Equal 断言期望值和实际值相等
func Equal(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !ObjectsAreEqual(expected, actual) {
		fail(t, "Not equal: \nexpected: %#v\nactual  : %#v", []interface{}{expected, actual}, msgAndArgs)
	}
}

// NotEqual 断言期望值和实际值不相等
func NotEqual(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if ObjectsAreEqual(expected, actual) {
		fail(t, "Should not be: %#v", []interface{}{actual}, msgAndArgs)
	}
}

// True 断言值为true
func True(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !value {
		fail(t, "Should be true", nil, msgAndArgs)
	}
}

// False 断言值为false
func False(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	if value {
		fail(t, "Should be false", nil, msgAndArgs)
	}
}

// Nil 断言值为nil
func Nil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !isNil(object) {
		fail(t, "Expected nil, but got: %#v", []interface{}{object}, msgAndArgs)
	}
}

// NotNil 断言值不为nil
func NotNil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if isNil(object) {
		fail(t, "Expected value not to be nil", nil, msgAndArgs)
	}
}

// ObjectsAreEqual 判断两个值是否相等
func ObjectsAreEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	exp, ok := expected.([]byte)
	if !ok {
		return reflect.DeepEqual(expected, actual)
	}
	act, ok := actual.([]byte)
	if !ok {
		return false
	}
	if exp == nil || act == nil {
		return exp == nil && act == nil
	}
	return bytes.Equal(exp, act)
}

func isNil(object interface{}) bool {
	if object == nil {
		return true
	}
	value := reflect.ValueOf(object)
	switch value.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return value.IsNil()
	}
	return false
}

func fail(t testing.TB, format string, args []interface{}, msgAndArgs []interface{}) {
	t.Helper()
	if len(msgAndArgs) > 0 {
		if msg, ok := msgAndArgs[0].(string); ok {
			format = format + "\nmessage : " + msg
			args = append(args, msgAndArgs[1:]...)
		}
	}
	t.Errorf(format, args...)
}
