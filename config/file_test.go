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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/config"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte("pending: slot\nworkers: 8\ndebounce: 1s\nstrict: true\n"))
	require.NoError(t, err)

	assert.Equal(t, apis.PendingSlot, cfg.Pending)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.True(t, cfg.Strict)
	assert.Equal(t, config.DefaultPendingLimit, cfg.PendingLimit, "absent keys keep defaults")
}

func TestParse_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown policy": "pending: stack\n",
		"zero workers":   "workers: 0\n",
		"negative limit": "pending_limit: -1\n",
		"unknown key":    "colour: blue\n",
		"bad duration":   "debounce: soon\n",
		"not a mapping":  "- 1\n- 2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := config.Parse([]byte("workers: 0\n"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "implreg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pending_limit: 5\n"), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PendingLimit)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
