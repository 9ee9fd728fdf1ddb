// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"sort"
	"strconv"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

// getList fetches key's list, treating a missing key as an empty one;
// ok is false only on a type mismatch.
func getList(ctx *Context, key string) (list [][]byte, existed bool, ok bool) {
	v, found := ctx.KS.Get(key)
	if !found {
		return nil, false, true
	}
	if v.Kind != keyspace.KindList {
		return nil, true, false
	}
	return v.List, true, true
}

func cmdLPush(ctx *Context, args [][]byte) wire.Reply { return push(ctx, args, true) }
func cmdRPush(ctx *Context, args [][]byte) wire.Reply { return push(ctx, args, false) }

func push(ctx *Context, args [][]byte, front bool) wire.Reply {
	if len(args) < 2 {
		return arityErr()
	}
	key := string(args[0])
	list, _, ok := getList(ctx, key)
	if !ok {
		return wrongType()
	}
	for _, v := range args[1:] {
		if front {
			list = append([][]byte{v}, list...)
		} else {
			list = append(list, v)
		}
	}
	ctx.KS.Put(key, keyspace.NewList(list...))
	return wire.Integer(int64(len(list)))
}

func cmdLPop(ctx *Context, args [][]byte) wire.Reply { return pop(ctx, args, true) }
func cmdRPop(ctx *Context, args [][]byte) wire.Reply { return pop(ctx, args, false) }

func pop(ctx *Context, args [][]byte, front bool) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	key := string(args[0])
	list, existed, ok := getList(ctx, key)
	if !ok {
		return wrongType()
	}
	if !existed || len(list) == 0 {
		return wire.NilBulk()
	}

	var val []byte
	if front {
		val, list = list[0], list[1:]
	} else {
		val, list = list[len(list)-1], list[:len(list)-1]
	}
	if len(list) == 0 {
		ctx.KS.Del(key)
	} else {
		ctx.KS.Put(key, keyspace.NewList(list...))
	}
	return wire.NewBulk(val)
}

func cmdLLen(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 1 {
		return arityErr()
	}
	list, _, ok := getList(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	return wire.Integer(int64(len(list)))
}

// resolveIndex turns a possibly-negative Redis-style index into an
// offset into a slice of length n, or -1 if out of range.
func resolveIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return -1
	}
	return i
}

func cmdLIndex(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 2 {
		return arityErr()
	}
	list, _, ok := getList(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	idx, ok := parseInt(args[1])
	if !ok {
		return notInt()
	}
	i := resolveIndex(int(idx), len(list))
	if i < 0 {
		return wire.NilBulk()
	}
	return wire.NewBulk(list[i])
}

func cmdLRange(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 3 {
		return arityErr()
	}
	list, _, ok := getList(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}
	start, ok1 := parseInt(args[1])
	stop, ok2 := parseInt(args[2])
	if !ok1 || !ok2 {
		return notInt()
	}

	n := len(list)
	s, e := clampRange(int(start), int(stop), n)
	out := make(wire.Array, 0, max0(e-s))
	for i := s; i < e; i++ {
		out = append(out, wire.NewBulk(list[i]))
	}
	return out
}

func clampRange(start, stop, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return 0, 0
	}
	return start, stop + 1
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func cmdLSet(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 3 {
		return arityErr()
	}
	key := string(args[0])
	list, existed, ok := getList(ctx, key)
	if !ok {
		return wrongType()
	}
	if !existed {
		return noSuchKey()
	}
	idx, ok := parseInt(args[1])
	if !ok {
		return notInt()
	}
	i := resolveIndex(int(idx), len(list))
	if i < 0 {
		return syntaxErr()
	}
	list[i] = args[2]
	ctx.KS.Put(key, keyspace.NewList(list...))
	return wire.SimpleString("OK")
}

func cmdLRem(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 3 {
		return arityErr()
	}
	key := string(args[0])
	list, _, ok := getList(ctx, key)
	if !ok {
		return wrongType()
	}
	count, ok := parseInt(args[1])
	if !ok {
		return notInt()
	}
	target := args[2]

	var out [][]byte
	removed := int64(0)
	switch {
	case count == 0:
		for _, v := range list {
			if string(v) == string(target) {
				removed++
				continue
			}
			out = append(out, v)
		}
	case count > 0:
		limit := count
		for _, v := range list {
			if limit > 0 && string(v) == string(target) {
				removed++
				limit--
				continue
			}
			out = append(out, v)
		}
	default:
		limit := -count
		for i := len(list) - 1; i >= 0; i-- {
			v := list[i]
			if limit > 0 && string(v) == string(target) {
				removed++
				limit--
				continue
			}
			out = append([][]byte{v}, out...)
		}
	}

	if len(out) == 0 {
		ctx.KS.Del(key)
	} else {
		ctx.KS.Put(key, keyspace.NewList(out...))
	}
	return wire.Integer(removed)
}

func cmdSort(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 1 || len(args) > 2 {
		return arityErr()
	}
	desc := false
	if len(args) == 2 {
		if string(args[1]) != "DESC" && string(args[1]) != "desc" {
			return syntaxErr()
		}
		desc = true
	}

	list, _, ok := getList(ctx, string(args[0]))
	if !ok {
		return wrongType()
	}

	nums := make([]int64, len(list))
	for i, v := range list {
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return wire.Err("ERR One or more scores can't be converted into double")
		}
		nums[i] = n
	}
	sort.Slice(nums, func(i, j int) bool {
		if desc {
			return nums[i] > nums[j]
		}
		return nums[i] < nums[j]
	})

	out := make(wire.Array, len(nums))
	for i, n := range nums {
		out[i] = wire.BulkFromString(strconv.FormatInt(n, 10))
	}
	return out
}
