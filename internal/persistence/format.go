// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package persistence

import (
	"strconv"
	"strings"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
)

// EncodeLine renders one keyspace entry in the snapshot file's
// "<TYPE>:<KEY>:<payload>[:EX:<seconds>]" line format. LIST and SET
// payloads are ':'-joined field lists; no escaping is attempted for
// values containing ':', an accepted limitation (see DESIGN.md).
func EncodeLine(key string, entry keyspace.SnapshotEntry) (string, bool) {
	var typ, payload string
	switch entry.Value.Kind {
	case keyspace.KindString:
		typ = "STRING"
		payload = string(entry.Value.Str)
	case keyspace.KindList:
		typ = "LIST"
		fields := make([]string, len(entry.Value.List))
		for i, e := range entry.Value.List {
			fields[i] = string(e)
		}
		payload = strings.Join(fields, ":")
	case keyspace.KindSet:
		typ = "SET"
		members := entry.Value.SetMembers()
		fields := make([]string, len(members))
		for i, m := range members {
			fields[i] = string(m)
		}
		payload = strings.Join(fields, ":")
	default:
		// Channel markers are transient pub/sub state, never persisted.
		return "", false
	}

	line := typ + ":" + key + ":" + payload
	if entry.TTLSeconds >= 0 {
		line += ":EX:" + strconv.FormatInt(entry.TTLSeconds, 10)
	}
	return line, true
}

// DecodeLine parses one snapshot line back into a key, value, and
// TTL (-1 = none). Malformed lines are reported so the caller can log
// and skip them rather than abort the whole reload.
func DecodeLine(line string) (key string, v keyspace.Value, ttlSeconds int64, ok bool) {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		return "", keyspace.Value{}, -1, false
	}
	typ, key := parts[0], parts[1]
	rest := parts[2:]

	ttlSeconds = -1
	if len(rest) >= 2 && rest[len(rest)-2] == "EX" {
		n, err := strconv.ParseInt(rest[len(rest)-1], 10, 64)
		if err == nil {
			ttlSeconds = n
			rest = rest[:len(rest)-2]
		}
	}

	switch typ {
	case "STRING":
		v = keyspace.NewString([]byte(strings.Join(rest, ":")))
	case "LIST":
		items := make([][]byte, len(rest))
		for i, f := range rest {
			items[i] = []byte(f)
		}
		v = keyspace.NewList(items...)
	case "SET":
		members := make([][]byte, len(rest))
		for i, f := range rest {
			members[i] = []byte(f)
		}
		v = keyspace.NewSet(members...)
	default:
		return "", keyspace.Value{}, -1, false
	}

	return key, v, ttlSeconds, true
}
