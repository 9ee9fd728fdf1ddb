// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package connrt is the connection runtime: it accepts sockets,
// frames requests in whichever dialect the client speaks, dispatches
// through internal/command, and writes replies. A subscribed
// connection rejects every command but SUBSCRIBE/UNSUBSCRIBE and
// otherwise only ever writes to its socket from its delivery mailbox.
package connrt

import (
	"bufio"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ClusterCockpit/kvstored/internal/wire"
)

var nextClientID uint64

// delivery is one pub/sub message queued for a subscribed client.
type delivery struct {
	channel string
	payload []byte
}

// client implements command.Client (pubsub.Subscriber + logger.Monitor)
// and owns the per-connection socket and mailbox.
type client struct {
	id      uint64
	conn    net.Conn
	w       *bufio.Writer
	mu      sync.Mutex
	mailbox chan delivery
	closed  atomic.Bool
}

func newClient(conn net.Conn, w *bufio.Writer) *client {
	return &client{
		id:      atomic.AddUint64(&nextClientID, 1),
		conn:    conn,
		w:       w,
		mailbox: make(chan delivery, 64),
	}
}

func (c *client) ID() uint64 { return c.id }

// Send queues a published message for delivery. Used by
// pubsub.Registry.Publish; must never block the publisher for long,
// so a full mailbox is treated as a dead subscriber.
func (c *client) Send(channel string, payload []byte) error {
	if c.closed.Load() {
		return errClosed
	}
	select {
	case c.mailbox <- delivery{channel: channel, payload: payload}:
		return nil
	default:
		return errClosed
	}
}

// SendMonitorLine writes line directly to the socket as a
// SimpleString, satisfying logger.Monitor. Used for clients that
// issued MONITOR, independent of subscribe mode.
func (c *client) SendMonitorLine(line string) error {
	if c.closed.Load() {
		return errClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.Encode(c.w, wire.SimpleString(line))
}

// writeReply serializes reply to the socket, serialized against any
// concurrent SendMonitorLine.
func (c *client) writeReply(reply wire.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.Encode(c.w, reply)
}

func (c *client) close() {
	c.closed.Store(true)
	c.conn.Close()
}

func (c *client) String() string { return "client#" + strconv.FormatUint(c.id, 10) }
