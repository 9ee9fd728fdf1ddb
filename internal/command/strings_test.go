// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command_test

import (
	"testing"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/command"
	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	ctx := newCtx()

	assert.Equal(t, "+OK\r\n", render(t, command.Dispatch(ctx, args("SET", "k", "v"))))
	assert.Equal(t, "$1\r\nv\r\n", render(t, command.Dispatch(ctx, args("GET", "k"))))
}

func TestGetMissingIsNil(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, "$-1\r\n", render(t, command.Dispatch(ctx, args("GET", "nope"))))
}

func TestSetWithEXExpires(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "k", "v", "EX", "0"))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, "$-1\r\n", render(t, command.Dispatch(ctx, args("GET", "k"))))
}

func TestGetWrongType(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("LPUSH", "k", "a"))
	assert.Contains(t, render(t, command.Dispatch(ctx, args("GET", "k"))), "WRONGTYPE")
}

func TestGetSetSwapsValue(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, "$-1\r\n", render(t, command.Dispatch(ctx, args("GETSET", "k", "first"))))
	assert.Equal(t, "$5\r\nfirst\r\n", render(t, command.Dispatch(ctx, args("GETSET", "k", "second"))))
	assert.Equal(t, "$6\r\nsecond\r\n", render(t, command.Dispatch(ctx, args("GET", "k"))))
}

func TestIncrDecrBy(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, ":5\r\n", render(t, command.Dispatch(ctx, args("INCRBY", "n", "5"))))
	assert.Equal(t, ":3\r\n", render(t, command.Dispatch(ctx, args("DECRBY", "n", "2"))))
}

func TestIncrByNotAnInteger(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "n", "abc"))
	assert.Contains(t, render(t, command.Dispatch(ctx, args("INCRBY", "n", "1"))), "not an integer")
}

func TestAppendCreatesThenExtends(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, ":5\r\n", render(t, command.Dispatch(ctx, args("APPEND", "k", "hello"))))
	assert.Equal(t, ":11\r\n", render(t, command.Dispatch(ctx, args("APPEND", "k", " world"))))
	assert.Equal(t, "$11\r\nhello world\r\n", render(t, command.Dispatch(ctx, args("GET", "k"))))
}

func TestStrLen(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, ":0\r\n", render(t, command.Dispatch(ctx, args("STRLEN", "missing"))))
	command.Dispatch(ctx, args("SET", "k", "hello"))
	assert.Equal(t, ":5\r\n", render(t, command.Dispatch(ctx, args("STRLEN", "k"))))
}

func TestMSetMGet(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, "+OK\r\n", render(t, command.Dispatch(ctx, args("MSET", "a", "1", "b", "2"))))
	assert.Equal(t, "*2\r\n$1\r\n1\r\n$1\r\n2\r\n", render(t, command.Dispatch(ctx, args("MGET", "a", "b"))))
}

func TestMSetOddArityIsArityError(t *testing.T) {
	ctx := newCtx()
	assert.Contains(t, render(t, command.Dispatch(ctx, args("MSET", "a", "1", "b"))), "wrong number of arguments")
}
