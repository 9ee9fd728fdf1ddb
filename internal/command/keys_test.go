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

func TestDelCountsOnlyExisting(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "a", "1"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("DEL", "a", "b"))))
}

func TestExistsCountsDuplicates(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "a", "1"))
	assert.Equal(t, ":2\r\n", render(t, command.Dispatch(ctx, args("EXISTS", "a", "a"))))
}

func TestRenameMissingSrcIsNoSuchKey(t *testing.T) {
	ctx := newCtx()
	assert.Contains(t, render(t, command.Dispatch(ctx, args("RENAME", "nope", "dst"))), "no such key")
}

func TestRenameMovesValue(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "src", "v"))
	assert.Equal(t, "+OK\r\n", render(t, command.Dispatch(ctx, args("RENAME", "src", "dst"))))
	assert.Equal(t, "$1\r\nv\r\n", render(t, command.Dispatch(ctx, args("GET", "dst"))))
}

func TestTypeReportsKind(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, "$4\r\nnone\r\n", render(t, command.Dispatch(ctx, args("TYPE", "missing"))))
	command.Dispatch(ctx, args("SET", "k", "v"))
	assert.Equal(t, "$6\r\nstring\r\n", render(t, command.Dispatch(ctx, args("TYPE", "k"))))
	command.Dispatch(ctx, args("RPUSH", "l", "a"))
	assert.Equal(t, "$4\r\nlist\r\n", render(t, command.Dispatch(ctx, args("TYPE", "l"))))
}

func TestExpirePersistTTL(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "k", "v"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("EXPIRE", "k", "10"))))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("PERSIST", "k"))))
	assert.Equal(t, ":-1\r\n", render(t, command.Dispatch(ctx, args("TTL", "k"))))
}

func TestTTLMissingKeyIsMinusTwo(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, ":-2\r\n", render(t, command.Dispatch(ctx, args("TTL", "nope"))))
}

func TestKeysPattern(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "foo", "1"))
	command.Dispatch(ctx, args("SET", "foobar", "2"))
	command.Dispatch(ctx, args("SET", "baz", "3"))
	reply := render(t, command.Dispatch(ctx, args("KEYS", "^foo")))
	assert.Contains(t, reply, "foo\r\n")
	assert.Contains(t, reply, "foobar\r\n")
	assert.NotContains(t, reply, "baz")
}

func TestCopyIsDeep(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "src", "v"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("COPY", "src", "dst"))))
	assert.Equal(t, "$1\r\nv\r\n", render(t, command.Dispatch(ctx, args("GET", "dst"))))
}

func TestTouchCountsExisting(t *testing.T) {
	ctx := newCtx()
	command.Dispatch(ctx, args("SET", "a", "1"))
	assert.Equal(t, ":1\r\n", render(t, command.Dispatch(ctx, args("TOUCH", "a", "missing"))))
}
