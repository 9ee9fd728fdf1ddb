// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command_test

import (
	"bufio"
	"bytes"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ClusterCockpit/kvstored/internal/command"
	"github.com/ClusterCockpit/kvstored/internal/config"
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/pubsub"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

// fakeClient satisfies command.Client without opening a real socket,
// recording everything a handler sends back out of band (pub/sub
// deliveries, MONITOR lines).
type fakeClient struct {
	id        uint64
	delivered []delivery
	monitored []string
	dead      bool
}

type delivery struct {
	channel string
	payload []byte
}

func (f *fakeClient) ID() uint64 { return f.id }

func (f *fakeClient) Send(channel string, payload []byte) error {
	if f.dead {
		return errors.New("fakeClient: closed")
	}
	f.delivered = append(f.delivered, delivery{channel, payload})
	return nil
}

func (f *fakeClient) SendMonitorLine(line string) error {
	if f.dead {
		return errors.New("fakeClient: closed")
	}
	f.monitored = append(f.monitored, line)
	return nil
}

var nextFakeClientID uint64

// newCtx builds a fresh Context with its own keyspace, pub/sub
// registry and config, suitable for one test's worth of Dispatch calls.
func newCtx() *command.Context {
	return &command.Context{
		KS:     keyspace.New(),
		PubSub: pubsub.New(),
		Config: config.New(),
		Client: &fakeClient{id: atomic.AddUint64(&nextFakeClientID, 1)},
	}
}

func args(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

// render encodes a reply the same way the connection runtime does, so
// assertions can compare against the wire bytes rather than reaching
// into the Reply's concrete type.
func render(t *testing.T, reply wire.Reply) string {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := wire.Encode(w, reply); err != nil {
		t.Fatalf("encode reply: %s", err.Error())
	}
	return buf.String()
}
