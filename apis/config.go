/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apis

import "time"

// PendingPolicy selects how a Context buffers registries while no hook is
// registered.
type PendingPolicy string

const (
	// PendingQueue keeps every undelivered registry in arrival order.
	PendingQueue PendingPolicy = "queue"
	// PendingSlot keeps only the most recent undelivered registry.
	PendingSlot PendingPolicy = "slot"
)

// Config carries read-only knobs for contexts, loaders and watchers.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Pending selects the buffering policy used before a hook registers.
	Pending PendingPolicy `yaml:"pending" validate:"oneof=queue slot"`

	// PendingLimit bounds the queue under PendingQueue. Zero means unbounded.
	// When full, the oldest buffered registry is dropped.
	PendingLimit int `yaml:"pending_limit" validate:"gte=0"`

	// Workers bounds how many data files a loader decodes concurrently.
	Workers int `yaml:"workers" validate:"gte=1"`

	// Debounce is how long a watcher waits for writes to settle before
	// reloading a file.
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`

	// Strict makes decoding reject a library assigned twice in one file
	// instead of letting the later assignment win.
	Strict bool `yaml:"strict"`
}
