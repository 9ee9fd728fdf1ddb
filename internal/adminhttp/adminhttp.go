// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package adminhttp serves a small operator surface on a second
// address, separate from the primary wire protocol port: health and
// Prometheus metrics.
package adminhttp

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/pubsub"
	"github.com/ClusterCockpit/kvstored/internal/util"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthzDeadline bounds how long /healthz waits on the keyspace lock
// before reporting unhealthy; it must stay well under any reasonable
// load-balancer probe timeout.
const healthzDeadline = 200 * time.Millisecond

var (
	commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kv_commands_total",
		Help: "Number of commands dispatched, by command name.",
	}, []string{"command"})

	snapshotWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kv_snapshot_writes_total",
		Help: "Number of snapshot files successfully written to disk.",
	})

	connectedClients atomic.Int64
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(snapshotWritesTotal)
}

// ObserveCommand increments the per-command counter; connrt calls this
// once per dispatched command.
func ObserveCommand(command string) {
	commandsTotal.WithLabelValues(command).Inc()
}

// ObserveSnapshotWrite records that the persistence writer successfully
// flushed a snapshot to disk.
func ObserveSnapshotWrite() {
	snapshotWritesTotal.Inc()
}

// ClientConnected and ClientDisconnected track the live connection
// count behind kv_connected_clients; connrt calls these as a
// connection's goroutine starts and tears down.
func ClientConnected()    { connectedClients.Add(1) }
func ClientDisconnected() { connectedClients.Add(-1) }

// Server owns the admin HTTP listener.
type Server struct {
	http *http.Server
	ks   *keyspace.Keyspace
}

// New builds the admin router: /healthz reports liveness, /metrics
// exposes the process's Prometheus registry, behind the
// recovery/compression middleware stack from gorilla/handlers.
// dbFilename, if non-empty, is reported as a gauge so operators can
// watch the snapshot file grow between checkpoints; "" (no
// persistence configured) reports zero.
func New(addr string, ks *keyspace.Keyspace, ps *pubsub.Registry, dbFilename string) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(commandsTotal)
	reg.MustRegister(snapshotWritesTotal)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kv_keyspace_size",
		Help: "Number of live keys currently in the keyspace.",
	}, func() float64 { return float64(ks.SizeLocked()) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kv_connected_clients",
		Help: "Number of currently open client connections.",
	}, func() float64 { return float64(connectedClients.Load()) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kv_subscribers_total",
		Help: "Number of distinct clients with at least one active channel subscription.",
	}, func() float64 { return float64(ps.SubscriberCount()) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kvstored_snapshot_bytes",
		Help: "Size in bytes of the on-disk snapshot file.",
	}, func() float64 {
		if dbFilename == "" {
			return 0
		}
		return float64(util.GetFilesize(dbFilename))
	}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kvstored_snapshot_dir_usage_megabytes",
		Help: "Combined size, in megabytes, of every file in the snapshot file's directory.",
	}, func() float64 {
		if dbFilename == "" {
			return 0
		}
		return util.DiskUsage(filepath.Dir(dbFilename))
	}))

	s := &Server{ks: ks}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CompressHandler)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// handleHealthz reports liveness by attempting to acquire the keyspace
// lock within healthzDeadline: a command handler wedged forever (a bug,
// never an expected state) shows up here as a failing probe instead of
// a healthz endpoint that always says ok regardless of server state.
func (s *Server) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if !s.ks.Probe(healthzDeadline) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Run starts serving; it returns http.ErrServerClosed on a clean
// Shutdown.
func (s *Server) Run() error { return s.http.ListenAndServe() }

func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }
