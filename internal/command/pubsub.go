// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"strings"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

// cmdSubscribe replies with one ["subscribe", channel, count] array
// when a single channel is named; for several channels the reply is
// one array holding such a triple per channel.
func cmdSubscribe(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return arityErr()
	}
	out := wire.Array{}
	for _, ch := range args {
		channel := string(ch)
		if !ctx.KS.Exists(channel) {
			ctx.KS.Put(channel, keyspace.NewChannel())
		}
		count := ctx.PubSub.Subscribe(channel, ctx.Client)
		out = append(out, wire.Array{
			wire.BulkFromString("subscribe"),
			wire.BulkFromString(channel),
			wire.Integer(count),
		})
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// cmdUnsubscribe replies in the same shape as cmdSubscribe, with
// "unsubscribe" as the first element of each triple.
func cmdUnsubscribe(ctx *Context, args [][]byte) wire.Reply {
	var channels []string
	if len(args) == 0 {
		channels = ctx.PubSub.SubscribedChannels(ctx.Client)
	} else {
		for _, ch := range args {
			channels = append(channels, string(ch))
		}
	}

	out := wire.Array{}
	for _, channel := range channels {
		count := ctx.PubSub.Unsubscribe(channel, ctx.Client)
		out = append(out, wire.Array{
			wire.BulkFromString("unsubscribe"),
			wire.BulkFromString(channel),
			wire.Integer(count),
		})
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func cmdPublish(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	channel := string(args[0])
	n := ctx.PubSub.Publish(channel, args[1])
	return wire.Integer(int64(n))
}

func cmdPubSub(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 1 {
		return arityErr()
	}
	switch strings.ToUpper(string(args[0])) {
	case "CHANNELS":
		pattern := ".*"
		if len(args) >= 2 {
			pattern = string(args[1])
		}
		channels := ctx.PubSub.Channels(pattern)
		out := make(wire.Array, len(channels))
		for i, ch := range channels {
			out[i] = wire.BulkFromString(ch)
		}
		return out
	default:
		return syntaxErr()
	}
}
