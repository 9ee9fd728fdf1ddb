// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pubsub maintains the per-channel subscriber registry and
// delivers published messages. It never holds a reference back into
// the keyspace: a Channel cell is only a marker that a channel has
// been named, the subscriber list lives here to avoid a cyclic
// ownership between the two packages.
package pubsub

import (
	"regexp"
	"sync"
)

// Subscriber is anything a connection can hand to Publish to receive
// messages. Sending to a dead subscriber must not block or panic;
// Send should report the failure so Registry can prune it.
type Subscriber interface {
	ID() uint64
	Send(channel string, payload []byte) error
}

// Registry is the explicit server-context value every connection and
// handler shares — no ambient singleton.
type Registry struct {
	mu       sync.Mutex
	channels map[string][]Subscriber
}

func New() *Registry {
	return &Registry{channels: map[string][]Subscriber{}}
}

// Subscribe registers sub on channel (creating it if needed) and
// returns the number of subscribers now on that channel.
func (r *Registry) Subscribe(channel string, sub Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.channels[channel]
	for _, s := range subs {
		if s.ID() == sub.ID() {
			return len(subs)
		}
	}
	subs = append(subs, sub)
	r.channels[channel] = subs
	return len(subs)
}

// Unsubscribe removes sub from channel, returning the remaining
// subscriber count. A channel left with no subscribers is dropped from
// the registry, so PUBSUB CHANNELS no longer reports it.
func (r *Registry) Unsubscribe(channel string, sub Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(channel, sub.ID())
}

func (r *Registry) removeLocked(channel string, id uint64) int {
	subs := r.channels[channel]
	for i, s := range subs {
		if s.ID() == id {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(r.channels, channel)
		return 0
	}
	r.channels[channel] = subs
	return len(subs)
}

// SubscribedChannels lists the channels sub currently subscribes to.
func (r *Registry) SubscribedChannels(sub Subscriber) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for ch, subs := range r.channels {
		for _, s := range subs {
			if s.ID() == sub.ID() {
				out = append(out, ch)
				break
			}
		}
	}
	return out
}

// UnsubscribeAll removes sub from every channel it is on, returning
// the list of channels it was removed from. Used by connection
// teardown.
func (r *Registry) UnsubscribeAll(sub Subscriber) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for ch, subs := range r.channels {
		for _, s := range subs {
			if s.ID() == sub.ID() {
				removed = append(removed, ch)
				break
			}
		}
	}
	for _, ch := range removed {
		r.removeLocked(ch, sub.ID())
	}
	return removed
}

// Publish delivers payload to every current subscriber on channel,
// pruning any that fail to receive it, and returns the number of
// successful deliveries.
func (r *Registry) Publish(channel string, payload []byte) int {
	r.mu.Lock()
	subs := make([]Subscriber, len(r.channels[channel]))
	copy(subs, r.channels[channel])
	r.mu.Unlock()

	delivered := 0
	var dead []uint64
	for _, s := range subs {
		if err := s.Send(channel, payload); err != nil {
			dead = append(dead, s.ID())
			continue
		}
		delivered++
	}

	if len(dead) > 0 {
		r.mu.Lock()
		for _, id := range dead {
			r.removeLocked(channel, id)
		}
		r.mu.Unlock()
	}
	return delivered
}

// SubscriberCount returns the number of distinct subscribers currently
// registered on any channel, for metrics reporting.
func (r *Registry) SubscriberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[uint64]struct{}{}
	for _, subs := range r.channels {
		for _, s := range subs {
			seen[s.ID()] = struct{}{}
		}
	}
	return len(seen)
}

// Active reports whether channel currently has at least one
// subscriber.
func (r *Registry) Active(channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels[channel]) > 0
}

// Channels lists active channel names matching pattern. An invalid
// pattern yields an empty list, matching Keyspace.Keys's behavior.
func (r *Registry) Channels(pattern string) []string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.channels))
	for ch, subs := range r.channels {
		if len(subs) > 0 && re.MatchString(ch) {
			out = append(out, ch)
		}
	}
	return out
}
