// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package connrt

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/adminhttp"
	"github.com/ClusterCockpit/kvstored/internal/command"
	"github.com/ClusterCockpit/kvstored/internal/config"
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/logger"
	"github.com/ClusterCockpit/kvstored/internal/persistence"
	"github.com/ClusterCockpit/kvstored/internal/pubsub"
	"github.com/ClusterCockpit/kvstored/internal/wire"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
	"golang.org/x/time/rate"
)

// Collaborators bundles the shared server-context values every
// connection needs to build its command.Context — no ambient
// singletons.
type Collaborators struct {
	KS       *keyspace.Keyspace
	PubSub   *pubsub.Registry
	Config   *config.Config
	Persist  persistence.Sender
	Log      logger.Sender
	Monitors *logger.Logger
}

// frame is one decoded request plus the dialect it arrived on, so the
// reply can be re-encoded the same way.
type frame struct {
	args  [][]byte
	http  bool
	isGet bool // HTTP GET carries no command; just serve the static page
	err   error
}

// Serve runs the accept loop on ln, handing each accepted connection
// to its own goroutine. Serve returns on the first ln.Accept failure
// after exit has been closed (shutdown closes ln right after exit);
// Accept failures before that are logged and the loop goes on.
func Serve(ln net.Listener, collab Collaborators, exit <-chan struct{}) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-exit:
				return
			default:
				log.Warnf("connrt: accept failed: %s", err.Error())
				continue
			}
		}
		go handle(conn, collab, exit)
	}
}

func handle(conn net.Conn, collab Collaborators, exit <-chan struct{}) {
	defer conn.Close()

	c := newClient(conn, bufio.NewWriter(conn))
	adminhttp.ClientConnected()
	defer func() {
		c.close()
		collab.PubSub.UnsubscribeAll(c)
		collab.Monitors.UnregisterMonitor(c)
		adminhttp.ClientDisconnected()
	}()

	ctx := &command.Context{
		KS:       collab.KS,
		PubSub:   collab.PubSub,
		Config:   collab.Config,
		Persist:  collab.Persist,
		Log:      collab.Log,
		Monitors: collab.Monitors,
		Client:   c,
	}

	var limiter *rate.Limiter
	if rps := collab.Config.RateLimit(); rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	r := bufio.NewReader(conn)
	frames := make(chan frame)
	go readLoop(r, conn, collab.Config, frames)

	for {
		select {
		case <-exit:
			return
		case d, ok := <-c.mailbox:
			if !ok {
				return
			}
			reply := wire.Array{
				wire.BulkFromString("message"),
				wire.BulkFromString(d.channel),
				wire.NewBulk(d.payload),
			}
			if err := c.writeReply(reply); err != nil {
				return
			}
		case f, ok := <-frames:
			if !ok {
				return
			}
			if limiter != nil && f.err == nil && !(f.http && f.isGet) && !limiter.Allow() {
				f = frame{http: f.http, err: errRateLimited}
			}
			if !dispatchFrame(ctx, c, f) {
				return
			}
		}
	}
}

// readLoop owns the blocking socket reads: it detects dialect on the
// first byte of each request and decodes accordingly, forwarding
// decoded frames (or a terminal error) to out. It exits (closing out)
// on any read error.
func readLoop(r *bufio.Reader, conn net.Conn, cfg *config.Config, out chan<- frame) {
	defer close(out)
	for {
		if timeout := cfg.Timeout(); timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(time.Duration(timeout) * time.Second))
		}

		b, err := r.Peek(1)
		if err != nil {
			return
		}

		if b[0] == '*' {
			args, err := wire.ReadRequest(r)
			if err != nil {
				out <- frame{err: err}
				return
			}
			out <- frame{args: args}
			continue
		}

		// Anything else is treated as the HTTP dialect's request line.
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		line = trimCRLF(line)
		req, err := wire.ReadHTTPRequest(r, line)
		if err != nil {
			out <- frame{err: err}
			return
		}
		if strings.EqualFold(req.Method, "GET") {
			out <- frame{http: true, isGet: true}
			continue
		}
		if !strings.EqualFold(req.Method, "POST") {
			out <- frame{err: wire.ErrSyntax}
			return
		}
		args, err := wire.ParseCommandBody(req.Body)
		if err != nil {
			out <- frame{http: true, err: err}
			continue
		}
		out <- frame{args: args, http: true}
	}
}

func trimCRLF(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// dispatchFrame runs one decoded command and writes its reply,
// rendering it through the HTTP text format when f arrived over that
// dialect. Returns false when the connection should close.
func dispatchFrame(ctx *command.Context, c *client, f frame) bool {
	if f.http && f.isGet {
		return writeHTTPBody(c, "200 OK", wire.StaticPage()) == nil
	}

	var reply wire.Reply
	switch {
	case f.err != nil:
		reply = wire.Err("ERR " + f.err.Error())
	case subscribeModeRejects(ctx, f.args):
		reply = wire.Err("ERR only (P)SUBSCRIBE / (P)UNSUBSCRIBE allowed while subscribed to a channel")
	default:
		name := strings.ToUpper(string(f.args[0]))
		if command.FamilyOf(name) != "" {
			adminhttp.ObserveCommand(name)
		}
		reply = command.Dispatch(ctx, f.args)
	}

	if ctx.Log != nil && len(f.args) > 0 {
		logger.Info(ctx.Log, commandLine(f.args))
	}

	if f.http {
		return writeHTTPBody(c, "200 OK", wire.RenderHTTPReply(reply)) == nil
	}
	return c.writeReply(reply) == nil
}

// subscribeModeRejects reports whether args must be rejected because
// ctx's client currently has active subscriptions: subscribe mode
// suspends every command except SUBSCRIBE/UNSUBSCRIBE.
func subscribeModeRejects(ctx *command.Context, args [][]byte) bool {
	if len(args) == 0 || len(ctx.PubSub.SubscribedChannels(ctx.Client)) == 0 {
		return false
	}
	switch strings.ToUpper(string(args[0])) {
	case "SUBSCRIBE", "UNSUBSCRIBE":
		return false
	default:
		return true
	}
}

func commandLine(args [][]byte) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.Write(a)
	}
	return b.String()
}

func writeHTTPBody(c *client, status, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.WriteHTTPResponse(c.w, status, body)
}
