// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

func getSet(ctx *Context, key string) (members map[string]struct{}, existed bool, ok bool) {
	v, found := ctx.KS.Get(key)
	if !found {
		return map[string]struct{}{}, false, true
	}
	if v.Kind != keyspace.KindSet {
		return nil, true, false
	}
	return v.Set, true, true
}

func cmdSAdd(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 2 {
		return arityErr()
	}
	key := string(args[0])
	set, _, ok := getSet(ctx, key)
	if !ok {
		return wrongType()
	}

	added := int64(0)
	for _, m := range args[1:] {
		if _, exists := set[string(m)]; !exists {
			set[string(m)] = struct{}{}
			added++
		}
	}
	ctx.KS.Put(key, valueFromSet(set))
	return wire.Integer(added)
}

func valueFromSet(set map[string]struct{}) keyspace.Value {
	members := make([][]byte, 0, len(set))
	for m := range set {
		members = append(members, []byte(m))
	}
	return keyspace.NewSet(members...)
}

func cmdSCard(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	set, _, ok := getSet(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	return wire.Integer(int64(len(set)))
}

func cmdSIsMember(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	set, _, ok := getSet(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	if _, exists := set[string(args[1])]; exists {
		return wire.Integer(1)
	}
	return wire.Integer(0)
}

func cmdSMembers(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	set, _, ok := getSet(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	out := make(wire.Array, 0, len(set))
	for m := range set {
		out = append(out, wire.BulkFromString(m))
	}
	return out
}

func cmdSRem(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 2 {
		return arityErr()
	}
	key := string(args[0])
	set, existed, ok := getSet(ctx, key)
	if !ok {
		return wrongType()
	}
	if !existed {
		return wire.Integer(0)
	}

	removed := int64(0)
	for _, m := range args[1:] {
		if _, exists := set[string(m)]; exists {
			delete(set, string(m))
			removed++
		}
	}
	if len(set) == 0 {
		ctx.KS.Del(key)
	} else {
		ctx.KS.Put(key, valueFromSet(set))
	}
	return wire.Integer(removed)
}
