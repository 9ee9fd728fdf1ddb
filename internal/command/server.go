// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ClusterCockpit/kvstored/internal/util"
	"github.com/ClusterCockpit/kvstored/internal/wire"
)

// immutableConfigKeys were already consumed at startup (the listener
// is already bound); CONFIG SET on one of these would silently do
// nothing useful, so it is rejected instead.
var immutableConfigKeys = []string{"host", "port"}

func cmdDBSize(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 0 {
		return arityErr()
	}
	return wire.Integer(int64(ctx.KS.Size()))
}

func cmdFlushDB(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 0 {
		return arityErr()
	}
	ctx.KS.Flush()
	return wire.SimpleString("OK")
}

// cmdConfig dispatches CONFIG GET pattern and CONFIG SET name value.
func cmdConfig(ctx *Context, args [][]byte) wire.Reply {
	if len(args) < 2 {
		return arityErr()
	}
	switch strings.ToUpper(string(args[0])) {
	case "GET":
		return configGet(ctx, string(args[1]))
	case "SET":
		if len(args) != 3 {
			return arityErr()
		}
		name := string(args[1])
		if util.Contains(immutableConfigKeys, name) {
			return wire.Err("ERR '" + name + "' is immutable once the server has started")
		}
		ctx.Config.Set(name, string(args[2]))
		return wire.SimpleString("OK")
	default:
		return syntaxErr()
	}
}

func configGet(ctx *Context, pattern string) wire.Reply {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return wire.Array{}
	}
	out := wire.Array{}
	for name, value := range ctx.Config.All() {
		if re.MatchString(name) {
			out = append(out, wire.BulkFromString(name), wire.BulkFromString(value))
		}
	}
	return out
}

func cmdInfo(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 0 {
		return arityErr()
	}
	out := wire.Array{}
	for name, value := range ctx.Config.All() {
		out = append(out, wire.BulkFromString(name+":"+value))
	}
	out = append(out, wire.BulkFromString("dbsize:"+strconv.Itoa(ctx.KS.Size())))
	out = append(out, ttlStatsLines(ctx)...)
	return out
}

// ttlStatsLines reports the mean and median remaining TTL, in seconds,
// across keys that currently carry one; keys with no expiry don't
// factor in, and an empty input reports "none" rather than NaN.
func ttlStatsLines(ctx *Context) []wire.Reply {
	ttls := ctx.KS.LiveTTLs()
	if len(ttls) == 0 {
		return []wire.Reply{wire.BulkFromString("ttl_mean_seconds:none"), wire.BulkFromString("ttl_median_seconds:none")}
	}

	seconds := make([]float64, len(ttls))
	lo, hi := ttls[0], ttls[0]
	for i, t := range ttls {
		seconds[i] = float64(t)
		lo, hi = util.Min(lo, t), util.Max(hi, t)
	}
	mean, _ := util.Mean(seconds)
	median, _ := util.Median(seconds)

	return []wire.Reply{
		wire.BulkFromString("ttl_mean_seconds:" + strconv.FormatFloat(mean, 'f', 2, 64)),
		wire.BulkFromString("ttl_median_seconds:" + strconv.FormatFloat(median, 'f', 2, 64)),
		wire.BulkFromString("ttl_min_seconds:" + strconv.FormatInt(lo, 10)),
		wire.BulkFromString("ttl_max_seconds:" + strconv.FormatInt(hi, 10)),
	}
}

func cmdMonitor(ctx *Context, args [][]byte) wire.Reply {
	if len(args) != 0 {
		return arityErr()
	}
	if ctx.Monitors != nil {
		ctx.Monitors.RegisterMonitor(ctx.Client)
	}
	return wire.SimpleString("OK")
}
