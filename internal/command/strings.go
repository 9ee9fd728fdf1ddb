// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"strconv"
	"strings"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

func cmdGet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	v, ok := ctx.KS.Get(string(args[0]))
	if !ok {
		return wire.NilBulk()
	}
	if v.Kind != keyspace.KindString {
		return wrongType()
	}
	return wire.NewBulk(v.Str)
}

// cmdSet implements SET k v [EX seconds].
func cmdSet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 2 {
		return arityErr()
	}
	key, val := string(args[0]), args[1]

	ttl, ok, err := findEX(args[2:])
	if err != nil {
		return syntaxErr()
	}
	if ok {
		ctx.KS.PutExpiring(key, keyspace.NewString(val), time.Duration(ttl)*time.Second)
	} else {
		ctx.KS.Put(key, keyspace.NewString(val))
	}
	return wire.SimpleString("OK")
}

// findEX scans trailing args for an "EX seconds" modifier pair.
func findEX(args [][]byte) (seconds int64, found bool, err error) {
	for i := 0; i < len(args); i++ {
		if strings.EqualFold(string(args[i]), "EX") {
			if i+1 >= len(args) {
				return 0, false, wire.ErrSyntax
			}
			n, ok := parseInt(args[i+1])
			if !ok {
				return 0, false, wire.ErrSyntax
			}
			return n, true, nil
		}
	}
	return 0, false, nil
}

func cmdGetSet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	old := ctx.KS.Swap(string(args[0]), keyspace.NewString(args[1]))
	if old.Kind != keyspace.KindString {
		return wire.NilBulk()
	}
	if old.Str == nil {
		return wire.NilBulk()
	}
	return wire.NewBulk(old.Str)
}

func cmdIncrBy(ctx *Context, args [][]byte) wire.Reply { return incrDecr(ctx, args, 1) }
func cmdDecrBy(ctx *Context, args [][]byte) wire.Reply { return incrDecr(ctx, args, -1) }

func incrDecr(ctx *Context, args [][]byte, sign int64) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	key := string(args[0])
	delta, ok := parseInt(args[1])
	if !ok {
		return notInt()
	}

	cur := int64(0)
	if v, ok := ctx.KS.Get(key); ok {
		if v.Kind != keyspace.KindString {
			return wrongType()
		}
		n, ok := parseInt(v.Str)
		if !ok {
			return notInt()
		}
		cur = n
	}

	next := cur + sign*delta
	ctx.KS.Put(key, keyspace.NewString([]byte(strconv.FormatInt(next, 10))))
	return wire.Integer(next)
}

func cmdAppend(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	key := string(args[0])
	v, ok := ctx.KS.Get(key)
	if !ok {
		ctx.KS.Put(key, keyspace.NewString(append([]byte{}, args[1]...)))
		return wire.Integer(int64(len(args[1])))
	}
	if v.Kind != keyspace.KindString {
		return wrongType()
	}
	next := append(append([]byte{}, v.Str...), args[1]...)
	ctx.KS.Put(key, keyspace.NewString(next))
	return wire.Integer(int64(len(next)))
}

func cmdStrLen(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	v, ok := ctx.KS.Get(string(args[0]))
	if !ok {
		return wire.Integer(0)
	}
	if v.Kind != keyspace.KindString {
		return wrongType()
	}
	return wire.Integer(int64(len(v.Str)))
}

func cmdMSet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 || len(args)%2 != 0 {
		return arityErr()
	}
	for i := 0; i < len(args); i += 2 {
		ctx.KS.Put(string(args[i]), keyspace.NewString(args[i+1]))
	}
	return wire.SimpleString("OK")
}

func cmdMGet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return arityErr()
	}
	out := make(wire.Array, len(args))
	for i, k := range args {
		v, ok := ctx.KS.Get(string(k))
		if !ok || v.Kind != keyspace.KindString {
			out[i] = wire.NilBulk()
			continue
		}
		out[i] = wire.NewBulk(v.Str)
	}
	return out
}
