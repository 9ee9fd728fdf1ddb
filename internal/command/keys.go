// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"time"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

func cmdCopy(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	if ctx.KS.Copy(string(args[0]), string(args[1])) {
		return wire.Integer(1)
	}
	return wire.Integer(0)
}

func cmdDel(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return arityErr()
	}
	n := int64(0)
	for _, k := range args {
		if ctx.KS.Del(string(k)) {
			n++
		}
	}
	return wire.Integer(n)
}

func cmdExists(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return arityErr()
	}
	n := int64(0)
	for _, k := range args {
		if ctx.KS.Exists(string(k)) {
			n++
		}
	}
	return wire.Integer(n)
}

func cmdRename(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	if !ctx.KS.Rename(string(args[0]), string(args[1])) {
		return noSuchKey()
	}
	return wire.SimpleString("OK")
}

// cmdType reports one of the closed set "string"|"list"|"set"|"none":
// a channel-backed key (SUBSCRIBE's bookkeeping marker) is not one of
// the addressable value kinds, so it reports "none" like a missing key.
func cmdType(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	v, ok := ctx.KS.Get(string(args[0]))
	if !ok || v.Kind == keyspace.KindChannel {
		return wire.BulkFromString("none")
	}
	return wire.BulkFromString(v.Kind.String())
}

func cmdExpire(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	secs, ok := parseInt(args[1])
	if !ok {
		return notInt()
	}
	if ctx.KS.SetTTL(string(args[0]), time.Duration(secs)*time.Second) {
		return wire.Integer(1)
	}
	return wire.Integer(0)
}

func cmdPersist(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	if ctx.KS.Persist(string(args[0])) {
		return wire.Integer(1)
	}
	return wire.Integer(0)
}

func cmdTTL(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	return wire.Integer(ctx.KS.TTL(string(args[0])))
}

func cmdKeys(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	keys := ctx.KS.Keys(string(args[0]))
	out := make(wire.Array, len(keys))
	for i, k := range keys {
		out[i] = wire.BulkFromString(k)
	}
	return out
}

func cmdTouch(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return arityErr()
	}
	n := int64(0)
	for _, k := range args {
		if ctx.KS.Exists(string(k)) {
			n++
		}
	}
	return wire.Integer(n)
}
