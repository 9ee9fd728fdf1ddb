// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logger runs the single background task that owns the log
// file: connections hand it Info lines over a mailbox channel instead
// of writing concurrently. Formatting goes through pkg/log, the
// project's leveled logger.
package logger

import (
	"fmt"
	"os"
	"sync"

	log "github.com/ClusterCockpit/kvstored/pkg/log"
)

// Monitor is a connection able to receive mirrored command lines once
// MONITOR has been issued on it. A failed Send silently unmonitors
// the connection.
type Monitor interface {
	SendMonitorLine(line string) error
}

type message struct {
	info     string
	shutdown bool
}

// Sender is the mailbox handle handlers and the connection runtime
// hold; they never touch the log file directly.
type Sender chan<- message

// Info enqueues a line for the logger to append.
func Info(s Sender, line string) {
	select {
	case s <- message{info: line}:
	default:
		// Mailbox full: drop rather than block a client's command.
		log.Warnf("logger: mailbox full, dropped line %q", line)
	}
}

// Shutdown asks the background task to flush and stop, blocking until
// it does.
func Shutdown(s Sender, done <-chan struct{}) {
	s <- message{shutdown: true}
	<-done
}

// Logger owns the log file and the set of currently monitoring
// clients.
type Logger struct {
	mu       sync.Mutex
	monitors []Monitor
}

// Start opens path for appending and spawns the background task.
// Returns the mailbox to send messages on and a channel closed once
// the task has processed Shutdown and exited.
func Start(path string, verbose bool) (Sender, *Logger, <-chan struct{}) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Errorf("logger: could not open %q: %s", path, err.Error())
	}

	mailbox := make(chan message, 256)
	done := make(chan struct{})
	l := &Logger{}

	go func() {
		defer close(done)
		defer func() {
			if f != nil {
				f.Close()
			}
		}()

		for msg := range mailbox {
			if msg.shutdown {
				return
			}
			l.write(f, verbose, msg.info)
			l.mirror(msg.info)
		}
	}()

	return mailbox, l, done
}

func (l *Logger) write(f *os.File, verbose bool, line string) {
	if f != nil {
		if _, err := fmt.Fprintln(f, line); err != nil {
			log.Errorf("logger: write failed: %s", err.Error())
		}
	}
	if verbose {
		fmt.Println(line)
	}
}

// RegisterMonitor adds m to the set mirrored on every future Info.
func (l *Logger) RegisterMonitor(m Monitor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.monitors = append(l.monitors, m)
}

// UnregisterMonitor removes m, used on connection teardown.
func (l *Logger) UnregisterMonitor(m Monitor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, mon := range l.monitors {
		if mon == m {
			l.monitors = append(l.monitors[:i], l.monitors[i+1:]...)
			return
		}
	}
}

func (l *Logger) mirror(line string) {
	l.mu.Lock()
	monitors := make([]Monitor, len(l.monitors))
	copy(monitors, l.monitors)
	l.mu.Unlock()

	var dead []Monitor
	for _, m := range monitors {
		if err := m.SendMonitorLine(line); err != nil {
			dead = append(dead, m)
		}
	}
	if len(dead) == 0 {
		return
	}

	l.mu.Lock()
	for _, d := range dead {
		for i, mon := range l.monitors {
			if mon == d {
				l.monitors = append(l.monitors[:i], l.monitors[i+1:]...)
				break
			}
		}
	}
	l.mu.Unlock()
}
