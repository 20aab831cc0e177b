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

package metrics

import (
	"sync/atomic"
)

// DeliveryMetrics holds delivery counters of a router.
type DeliveryMetrics struct {
	InFlight  int64 // Number of deliveries currently running
	Total     int64 // Total number of deliveries handed to the delivery strategy
	Failed    int64 // Number of deliveries whose receiver returned an error or panicked
	Delivered int64 // Number of deliveries the receiver accepted
	Discarded int64 // Number of batches dropped because the router was stopping or stopped
}

// NewDeliveryMetrics creates a new instance of DeliveryMetrics.
func NewDeliveryMetrics() *DeliveryMetrics {
	return &DeliveryMetrics{}
}

// Begin marks the start of one delivery.
func (m *DeliveryMetrics) Begin() {
	atomic.AddInt64(&m.Total, 1)
	atomic.AddInt64(&m.InFlight, 1)
}

// End marks the end of one delivery.
func (m *DeliveryMetrics) End(failed bool) {
	atomic.AddInt64(&m.InFlight, -1)
	if failed {
		atomic.AddInt64(&m.Failed, 1)
	} else {
		atomic.AddInt64(&m.Delivered, 1)
	}
}

// IncrementDiscarded increases the count of discarded batches.
func (m *DeliveryMetrics) IncrementDiscarded() {
	atomic.AddInt64(&m.Discarded, 1)
}

// Get returns a copy of the current metrics.
func (m *DeliveryMetrics) Get() DeliveryMetrics {
	return DeliveryMetrics{
		InFlight:  atomic.LoadInt64(&m.InFlight),
		Total:     atomic.LoadInt64(&m.Total),
		Failed:    atomic.LoadInt64(&m.Failed),
		Delivered: atomic.LoadInt64(&m.Delivered),
		Discarded: atomic.LoadInt64(&m.Discarded),
	}
}

// Reset resets all metrics to zero.
func (m *DeliveryMetrics) Reset() {
	atomic.StoreInt64(&m.InFlight, 0)
	atomic.StoreInt64(&m.Total, 0)
	atomic.StoreInt64(&m.Failed, 0)
	atomic.StoreInt64(&m.Delivered, 0)
	atomic.StoreInt64(&m.Discarded, 0)
}
