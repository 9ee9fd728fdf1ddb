// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"net"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/adminhttp"
	"github.com/ClusterCockpit/kvstored/internal/config"
	"github.com/ClusterCockpit/kvstored/internal/connrt"
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/logger"
	"github.com/ClusterCockpit/kvstored/internal/persistence"
	"github.com/ClusterCockpit/kvstored/internal/pubsub"
	"github.com/ClusterCockpit/kvstored/internal/runtimeEnv"
	"github.com/ClusterCockpit/kvstored/internal/task"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
)

// app bundles every long-running collaborator started by serverInit,
// so serverShutdown can unwind them in the right order.
type app struct {
	ln          net.Listener
	admin       *adminhttp.Server
	scheduler   *task.Scheduler
	logSender   logger.Sender
	monitors    *logger.Logger
	logDone     <-chan struct{}
	persistSend persistence.Sender
	persistDone <-chan struct{}
	exit        chan struct{}
	ks          *keyspace.Keyspace
	pubsub      *pubsub.Registry
}

func serverInit() *app {
	ks := keyspace.New()
	ps := pubsub.New()
	if err := persistence.Load(config.Keys.DBFilename(), config.Keys.GzipSnapshot(), ks); err != nil {
		log.Warnf("loading snapshot %q failed: %s", config.Keys.DBFilename(), err.Error())
	}

	logSend, mon, logDone := logger.Start(config.Keys.LogFile(), config.Keys.Verbose())
	persistSend, persistDone := persistence.Start(config.Keys.DBFilename(), config.Keys.GzipSnapshot())

	sched, err := task.Start()
	if err != nil {
		log.Fatalf("could not start scheduler: %s", err.Error())
	}
	sched.RegisterSnapshot(config.Keys.CheckpointInterval(), ks, persistSend)
	sched.RegisterExpirySweep(config.Keys.ExpirySweepInterval(), ks)
	sched.Run()

	ln, err := net.Listen("tcp", config.Keys.Addr())
	if err != nil {
		log.Fatalf("starting listener failed: %s", err.Error())
	}

	if user, group := config.Keys.User(), config.Keys.Group(); user != "" || group != "" {
		if err := runtimeEnv.DropPrivileges(user, group); err != nil {
			log.Fatalf("dropping privileges to user=%q group=%q failed: %s", user, group, err.Error())
		}
	}

	var admin *adminhttp.Server
	if addr := config.Keys.AdminAddr(); addr != "" {
		admin = adminhttp.New(addr, ks, ps, config.Keys.DBFilename())
		go func() {
			if err := admin.Run(); err != nil && err.Error() != "http: Server closed" {
				log.Errorf("admin http server failed: %s", err.Error())
			}
		}()
	}

	return &app{
		ln:          ln,
		admin:       admin,
		scheduler:   sched,
		logSender:   logSend,
		monitors:    mon,
		logDone:     logDone,
		persistSend: persistSend,
		persistDone: persistDone,
		exit:        make(chan struct{}),
		ks:          ks,
		pubsub:      ps,
	}
}

func (a *app) serverStart() {
	collab := connrt.Collaborators{
		KS:       a.ks,
		PubSub:   a.pubsub,
		Config:   config.Keys,
		Persist:  a.persistSend,
		Log:      a.logSender,
		Monitors: a.monitors,
	}
	log.Printf("kvstored listening at %s", config.Keys.Addr())
	connrt.Serve(a.ln, collab, a.exit)
}

func (a *app) serverShutdown() {
	close(a.exit)
	a.ln.Close()

	if err := a.scheduler.Stop(); err != nil {
		log.Warnf("scheduler shutdown: %s", err.Error())
	}

	persistence.Shutdown(a.persistSend, a.persistDone)
	logger.Shutdown(a.logSender, a.logDone)

	if a.admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.admin.Shutdown(ctx)
	}

	runtimeEnv.SystemdNotifiy(false, "shutting down")
}
