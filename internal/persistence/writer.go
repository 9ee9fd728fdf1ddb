// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package persistence runs the single background task that owns the
// snapshot file: it never writes inline with a client command. A
// snapshot is a deep, point-in-time copy of the keyspace handed over
// the mailbox, so the writer never has to take the keyspace lock
// itself.
package persistence

import (
	"bufio"
	"os"

	"github.com/ClusterCockpit/kvstored/internal/adminhttp"
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/util"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
)

type kind int

const (
	kindSnapshot kind = iota
	kindShutdown
)

type message struct {
	kind kind
	data map[string]keyspace.SnapshotEntry
}

// Sender is the mailbox handle handlers and the background scheduler
// hold; they never touch the snapshot file directly.
type Sender chan<- message

// RequestSnapshot enqueues a point-in-time copy of the keyspace to be
// written out. Non-blocking: the mailbox holds up to four pending
// requests behind the save in flight, and a request that finds it full
// is dropped.
func RequestSnapshot(s Sender, data map[string]keyspace.SnapshotEntry) {
	select {
	case s <- message{kind: kindSnapshot, data: data}:
	default:
		log.Warnf("persistence: writer busy, dropped snapshot request")
	}
}

// Shutdown asks the background task to stop, blocking until it does.
func Shutdown(s Sender, done <-chan struct{}) {
	s <- message{kind: kindShutdown}
	<-done
}

// Writer owns the on-disk snapshot file.
type Writer struct {
	path string
	gzip bool
}

// Start spawns the background task and returns the mailbox to send
// messages on plus a channel closed once it has processed Shutdown
// and exited. path is the configured dbfilename, used as given; when
// gzip is set the file at path holds gzip-compressed content, written
// via internal/util (no suffix is added to path).
func Start(path string, gzipEnabled bool) (Sender, <-chan struct{}) {
	w := &Writer{path: path, gzip: gzipEnabled}
	mailbox := make(chan message, 4)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range mailbox {
			switch msg.kind {
			case kindShutdown:
				return
			case kindSnapshot:
				if err := w.save(msg.data); err != nil {
					log.Errorf("persistence: save failed: %s", err.Error())
				}
			}
		}
	}()

	return mailbox, done
}

// diskPath returns where the writer actually puts bytes: a plain
// snapshot path, or a ".tmp" staging path when gzip is enabled (it is
// gzipped into w.path afterwards via util.CompressFile, which removes
// the staging file).
func (w *Writer) diskPath() string {
	if w.gzip {
		return w.path + ".tmp"
	}
	return w.path
}

func (w *Writer) save(data map[string]keyspace.SnapshotEntry) error {
	target := w.diskPath()
	f, err := os.Create(target)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	for key, entry := range data {
		line, ok := EncodeLine(key, entry)
		if !ok {
			continue
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if w.gzip {
		if err := util.CompressFile(target, w.path); err != nil {
			return err
		}
		adminhttp.ObserveSnapshotWrite()
		return nil
	}
	adminhttp.ObserveSnapshotWrite()
	return nil
}

// Load reads path (when gzipEnabled, first gunzipping it into the
// sibling path+".tmp" and reading that) and restores every entry into
// ks. It
// is meant to run once at startup, before any connection is accepted;
// a missing file is not an error — the keyspace simply starts empty.
func Load(path string, gzipEnabled bool, ks *keyspace.Keyspace) error {
	readPath := path
	if gzipEnabled {
		readPath = path + ".tmp"
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if err := util.UncompressFile(path, readPath); err != nil {
			return err
		}
	}

	f, err := os.Open(readPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, v, ttl, ok := DecodeLine(line)
		if !ok {
			log.Warnf("persistence: skipping malformed snapshot line %q", line)
			continue
		}
		ks.Restore(key, v, ttl)
	}
	return sc.Err()
}
