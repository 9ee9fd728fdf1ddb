// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ClusterCockpit/kvstored/internal/config"
	"github.com/ClusterCockpit/kvstored/internal/runtimeEnv"
	"github.com/ClusterCockpit/kvstored/internal/util"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
	"github.com/google/gops/agent"
)

var (
	version = "development"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cliInit()

	if flagVersion {
		fmt.Printf("kvstored %s (%s, %s)\n", version, commit, date)
		return
	}

	if flagInit {
		initEnv()
		return
	}

	// See https://github.com/google/gops (Runtime overhead is almost zero)
	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if flagEnvFile != "" {
		if err := runtimeEnv.LoadEnv(flagEnvFile); err != nil {
			log.Fatalf("loading env file %q failed: %s", flagEnvFile, err.Error())
		}
	}

	if err := config.Keys.Load(flagConfigFile); err != nil {
		log.Fatalf("loading %q failed: %s", flagConfigFile, err.Error())
	}

	util.AddListener(flagConfigFile, configReloader{})

	a := serverInit()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.serverStart()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	runtimeEnv.SystemdNotifiy(true, "running")
	<-sigs
	a.serverShutdown()
	wg.Wait()

	log.Print("graceful shutdown completed")
}

// configReloader satisfies util.Listener so CONFIG-file edits take
// effect without a restart via fsnotify.
type configReloader struct{}

func (configReloader) EventCallback() {
	if err := config.Keys.Load(flagConfigFile); err != nil {
		log.Warnf("config reload failed: %s", err.Error())
	} else {
		log.Info("configuration reloaded")
	}
}

func (configReloader) EventMatch(event string) bool {
	return true
}
