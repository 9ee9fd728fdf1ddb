// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package task schedules the server's periodic background jobs, the
// snapshot interval and the keyspace's optional eager-expiry sweep,
// with go-co-op/gocron.
package task

import (
	"time"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/persistence"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
	"github.com/go-co-op/gocron/v2"
)

// Scheduler owns the gocron instance; Stop must be called once to let
// its goroutines exit cleanly.
type Scheduler struct {
	s gocron.Scheduler
}

// Start creates the scheduler with no jobs registered; add them with
// RegisterSnapshot and RegisterExpirySweep. It does not itself start
// the underlying clock; call Run after registering every job.
func Start() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{s: s}, nil
}

// RegisterSnapshot schedules a recurring snapshot request every
// interval seconds. interval <= 0 disables the job.
func (sc *Scheduler) RegisterSnapshot(interval int, ks *keyspace.Keyspace, persist persistence.Sender) {
	if interval <= 0 {
		return
	}
	d := time.Duration(interval) * time.Second
	if _, err := sc.s.NewJob(gocron.DurationJob(d),
		gocron.NewTask(func() {
			persistence.RequestSnapshot(persist, ks.SnapshotLocked())
		}),
	); err != nil {
		log.Warnf("task: could not register snapshot job: %s", err.Error())
	}
}

// RegisterExpirySweep schedules a recurring active sweep of expired
// keys every interval seconds. interval <= 0 disables the job, leaving
// expiry purely lazy (resolved on next read of the key).
func (sc *Scheduler) RegisterExpirySweep(interval int, ks *keyspace.Keyspace) {
	if interval <= 0 {
		return
	}
	d := time.Duration(interval) * time.Second
	if _, err := sc.s.NewJob(gocron.DurationJob(d),
		gocron.NewTask(func() {
			if n := ks.Sweep(); n > 0 {
				log.Debugf("task: expiry sweep evicted %d key(s)", n)
			}
		}),
	); err != nil {
		log.Warnf("task: could not register expiry sweep job: %s", err.Error())
	}
}

// Run starts the scheduler's clock; jobs begin firing from here on.
func (sc *Scheduler) Run() { sc.s.Start() }

// Stop asks the scheduler to shut down, blocking until its goroutines
// exit.
func (sc *Scheduler) Stop() error { return sc.s.Shutdown() }
