// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command_test

import (
	"testing"

	"github.com/ClusterCockpit/kvstored/internal/command"
	"github.com/stretchr/testify/assert"
)

func TestLPushRPushOrdering(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "a", "b"))
	command.Dispatch(ctx, args("LPUSH", "l", "z"))
	assert.Equal(t, "*3\r\n$1\r\nz\r\n$1\r\na\r\n$1\r\nb\r\n", render(t, command.Dispatch(ctx, args("LRANGE", "l", "0", "-1"))))
}

func TestLPopRPopEmptiesKey(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "only"))
	assert.Equal(t, "$4\r\nonly\r\n", render(t, command.Dispatch(ctx, args("LPOP", "l"))))
	assert.Equal(t, "$-1\r\n", render(t, command.Dispatch(ctx, args("LPOP", "l"))))
	assert.Equal(t, ":0\r\n", render(t, command.Dispatch(ctx, args("EXISTS", "l"))))
}

func TestLLen(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "a", "b", "c"))
	assert.Equal(t, ":3\r\n", render(t, command.Dispatch(ctx, args("LLEN", "l"))))
}

func TestLIndexNegative(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "a", "b", "c"))
	assert.Equal(t, "$1\r\nc\r\n", render(t, command.Dispatch(ctx, args("LINDEX", "l", "-1"))))
	assert.Equal(t, "$-1\r\n", render(t, command.Dispatch(ctx, args("LINDEX", "l", "5"))))
}

func TestLSet(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "a", "b"))
	assert.Equal(t, "+OK\r\n", render(t, command.Dispatch(ctx, args("LSET", "l", "1", "B"))))
	assert.Equal(t, "$1\r\nB\r\n", render(t, command.Dispatch(ctx, args("LINDEX", "l", "1"))))
}

func TestLSetMissingKeyIsNoSuchKey(t *testing.T) {
	ctx := newCtx()
	assert.Contains(t, render(t, command.Dispatch(ctx, args("LSET", "l", "0", "x"))), "no such key")
}

func TestLRemPositiveNegativeZero(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "a", "x", "a", "x", "a"))

	ctx2 := newCtx()
	command.Dispatch(ctx2, args("RPUSH", "l", "a", "x", "a", "x", "a"))
	assert.Equal(t, ":3\r\n", render(t, command.Dispatch(ctx2, args("LREM", "l", "0", "a"))))

	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("LREM", "l", "1", "a"))))
	assert.Equal(t, "*4\r\n$1\r\nx\r\n$1\r\na\r\n$1\r\nx\r\n$1\r\na\r\n", render(t, command.Dispatch(ctx, args("LRANGE", "l", "0", "-1"))))

	ctx3 := newCtx()
	command.Dispatch(ctx3, args("RPUSH", "l", "a", "x", "a", "x", "a"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx3, args("LREM", "l", "-1", "a"))))
	assert.Equal(t, "*4\r\n$1\r\na\r\n$1\r\nx\r\n$1\r\na\r\n$1\r\nx\r\n", render(t, command.Dispatch(ctx3, args("LRANGE", "l", "0", "-1"))))
}

func TestSortAscDesc(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "3", "1", "2"))
	assert.Equal(t, "*3\r\n$1\r\n1\r\n$1\r\n2\r\n$1\r\n3\r\n", render(t, command.Dispatch(ctx, args("SORT", "l"))))
	assert.Equal(t, "*3\r\n$1\r\n3\r\n$1\r\n2\r\n$1\r\n1\r\n", render(t, command.Dispatch(ctx, args("SORT", "l", "DESC"))))
}

func TestSortNonNumericIsError(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("RPUSH", "l", "abc"))
	assert.Contains(t, render(t, command.Dispatch(ctx, args("SORT", "l"))), "ERR")
}

func TestListWrongType(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "k", "v"))
	assert.Contains(t, render(t, command.Dispatch(ctx, args("LPUSH", "k", "a"))), "WRONGTYPE")
}
