// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command_test

import (
	"testing"

	"github.com/ClusterCockpit/kvstored/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSAddIsIdempotentPerMember(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, ":2\r\n", render(t, command.Dispatch(ctx, args("SADD", "s", "a", "b"))))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("SADD", "s", "a", "c"))))
	assert.Equal(t, ":3\r\n", render(t, command.Dispatch(ctx, args("SCARD", "s"))))
}

func TestSIsMember(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SADD", "s", "a"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("SISMEMBER", "s", "a"))))
	assert.Equal(t, ":0\r\n", render(t, command.Dispatch(ctx, args("SISMEMBER", "s", "b"))))
}

func TestSMembers(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SADD", "s", "a", "b"))
	reply := render(t, command.Dispatch(ctx, args("SMEMBERS", "s")))
	assert.Contains(t, reply, "a")
	assert.Contains(t, reply, "b")
}

func TestSRemDeletesKeyWhenEmpty(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SADD", "s", "a"))
	require.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("SREM", "s", "a"))))
	assert.Equal(t, ":0\r\n", render(t, command.Dispatch(ctx, args("EXISTS", "s"))))
}

func TestSetWrongType(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "k", "v"))
	assert.Contains(t, render(t, command.Dispatch(ctx, args("SADD", "k", "a"))), "WRONGTYPE")
}
