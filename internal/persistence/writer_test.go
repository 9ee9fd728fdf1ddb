// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package persistence_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	ks := keyspace.New()
	err := persistence.Load(filepath.Join(t.TempDir(), "missing.rb"), false, ks)
	require.NoError(t, err)
	assert.Equal(t, 0, ks.SizeLocked())
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rb")

	send, done := persistence.Start(path, false)
	snapshot := map[string]keyspace.SnapshotEntry{
		"k": {Value: keyspace.NewString([]byte("v")), TTLSeconds: -1},
	}
	persistence.RequestSnapshot(send, snapshot)
	persistence.Shutdown(send, done)

	ks := keyspace.New()
	require.NoError(t, persistence.Load(path, false, ks))

	ks.Lock()
	v, ok := ks.Get("k")
	ks.Unlock()
	require.True(t, ok)
	assert.Equal(t, "v", string(v.Str))
}

func TestSnapshotRoundTripGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.rb.gz")

	send, done := persistence.Start(path, true)
	snapshot := map[string]keyspace.SnapshotEntry{
		"k": {Value: keyspace.NewString([]byte("compressed")), TTLSeconds: -1},
	}
	persistence.RequestSnapshot(send, snapshot)
	persistence.Shutdown(send, done)

	ks := keyspace.New()
	require.NoError(t, persistence.Load(path, true, ks))

	ks.Lock()
	v, ok := ks.Get("k")
	ks.Unlock()
	require.True(t, ok)
	assert.Equal(t, "compressed", string(v.Str))
}

func TestRestorePreservesTTL(t *testing.T) {
	ks := keyspace.New()
	ks.Restore("k", keyspace.NewString([]byte("v")), 60)

	ks.Lock()
	ttl := ks.TTL("k")
	ks.Unlock()
	assert.Greater(t, ttl, int64(0))
}

func TestRestoreNegativeTTLNeverExpires(t *testing.T) {
	ks := keyspace.New()
	ks.Restore("k", keyspace.NewString([]byte("v")), -1)
	time.Sleep(5 * time.Millisecond)

	ks.Lock()
	ok := ks.Exists("k")
	ks.Unlock()
	assert.True(t, ok)
}
