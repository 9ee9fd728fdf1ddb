// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"strconv"
	"strings"

	"github.com/ClusterCockpit/kvstored/internal/wire"
)

// Handler executes one command's args against ctx and returns the
// reply to send back. The keyspace lock is held by the caller for the
// whole call, so a handler may freely read-modify-write.
type Handler func(ctx *Context, args [][]byte) wire.Reply

type entry struct {
	handler Handler
	family  string
}

var registry = map[string]entry{
	// strings
	"GET":    {cmdGet, "string"},
	"SET":    {cmdSet, "string"},
	"GETSET": {cmdGetSet, "string"},
	"INCRBY": {cmdIncrBy, "string"},
	"DECRBY": {cmdDecrBy, "string"},
	"APPEND": {cmdAppend, "string"},
	"STRLEN": {cmdStrLen, "string"},
	"MSET":   {cmdMSet, "string"},
	"MGET":   {cmdMGet, "string"},

	// lists
	"LPUSH":  {cmdLPush, "list"},
	"RPUSH":  {cmdRPush, "list"},
	"LPOP":   {cmdLPop, "list"},
	"RPOP":   {cmdRPop, "list"},
	"LLEN":   {cmdLLen, "list"},
	"LINDEX": {cmdLIndex, "list"},
	"LRANGE": {cmdLRange, "list"},
	"LSET":   {cmdLSet, "list"},
	"LREM":   {cmdLRem, "list"},
	"SORT":   {cmdSort, "list"},

	// sets
	"SADD":      {cmdSAdd, "set"},
	"SCARD":     {cmdSCard, "set"},
	"SISMEMBER": {cmdSIsMember, "set"},
	"SMEMBERS":  {cmdSMembers, "set"},
	"SREM":      {cmdSRem, "set"},

	// keys
	"COPY":    {cmdCopy, "key"},
	"DEL":     {cmdDel, "key"},
	"EXISTS":  {cmdExists, "key"},
	"RENAME":  {cmdRename, "key"},
	"TYPE":    {cmdType, "key"},
	"EXPIRE":  {cmdExpire, "key"},
	"PERSIST": {cmdPersist, "key"},
	"TTL":     {cmdTTL, "key"},
	"KEYS":    {cmdKeys, "key"},
	"TOUCH":   {cmdTouch, "key"},

	// server
	"DBSIZE":  {cmdDBSize, "server"},
	"FLUSHDB": {cmdFlushDB, "server"},
	"CONFIG":  {cmdConfig, "server"},
	"INFO":    {cmdInfo, "server"},
	"MONITOR": {cmdMonitor, "server"},

	// pub/sub
	"SUBSCRIBE":   {cmdSubscribe, "pubsub"},
	"UNSUBSCRIBE": {cmdUnsubscribe, "pubsub"},
	"PUBLISH":     {cmdPublish, "pubsub"},
	"PUBSUB":      {cmdPubSub, "pubsub"},
}

// Dispatch looks up args[0] (case-insensitive) and runs it, taking the
// keyspace lock for the handler's whole execution. Empty and unknown
// commands are reported here; each handler checks its own arity and
// replies with arityErr on a mismatch.
func Dispatch(ctx *Context, args [][]byte) wire.Reply {
	if len(args) == 0 {
		return wire.Err("ERR empty command")
	}
	name := strings.ToUpper(string(args[0]))
	e, ok := registry[name]
	if !ok {
		return wire.Err("ERR unknown command '" + joinArgs(args) + "'")
	}

	ctx.KS.Lock()
	defer ctx.KS.Unlock()
	return e.handler(ctx, args[1:])
}

// FamilyOf reports which command family name belongs to; the empty
// string means name is not a recognized command. The connection
// runtime uses it to count only recognized commands in its metrics.
func FamilyOf(name string) string {
	return registry[strings.ToUpper(name)].family
}

// joinArgs renders a full command line, space-separated, for error
// messages that must echo back what the client sent.
func joinArgs(args [][]byte) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return strings.Join(parts, " ")
}

func arityErr() wire.Reply { return wire.Err("ERR wrong number of arguments") }

func wrongType() wire.Reply { return wire.Err("WRONGTYPE Operation against a key holding the wrong kind of value") }

func notInt() wire.Reply { return wire.Err("ERR value is not an integer or out of range") }

func noSuchKey() wire.Reply { return wire.Err("ERR no such key") }

func syntaxErr() wire.Reply { return wire.Err("ERR syntax error") }

func parseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}
