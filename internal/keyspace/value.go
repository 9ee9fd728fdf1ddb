// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package keyspace

// Kind tags the shape a TypedValue holds.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindSet
	KindChannel
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindChannel:
		return "channel"
	}
	return "none"
}

// Value is the tagged variant stored in every cell: a byte string, an
// ordered list of byte strings, a set of byte strings, or a pub/sub
// channel marker. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Str  []byte
	List [][]byte
	Set  map[string]struct{}
}

func NewString(b []byte) Value {
	return Value{Kind: KindString, Str: b}
}

func NewList(items ...[]byte) Value {
	l := make([][]byte, len(items))
	copy(l, items)
	return Value{Kind: KindList, List: l}
}

func NewSet(members ...[]byte) Value {
	s := make(map[string]struct{}, len(members))
	for _, m := range members {
		s[string(m)] = struct{}{}
	}
	return Value{Kind: KindSet, Set: s}
}

func NewChannel() Value {
	return Value{Kind: KindChannel}
}

// Clone deep-copies v so that a COPY destination never aliases the
// source's backing arrays/maps.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindString:
		b := make([]byte, len(v.Str))
		copy(b, v.Str)
		return Value{Kind: KindString, Str: b}
	case KindList:
		l := make([][]byte, len(v.List))
		for i, e := range v.List {
			b := make([]byte, len(e))
			copy(b, e)
			l[i] = b
		}
		return Value{Kind: KindList, List: l}
	case KindSet:
		s := make(map[string]struct{}, len(v.Set))
		for m := range v.Set {
			s[m] = struct{}{}
		}
		return Value{Kind: KindSet, Set: s}
	default:
		return Value{Kind: v.Kind}
	}
}

// SetMembers returns the set's members in unspecified order.
func (v Value) SetMembers() [][]byte {
	out := make([][]byte, 0, len(v.Set))
	for m := range v.Set {
		out = append(out, []byte(m))
	}
	return out
}
