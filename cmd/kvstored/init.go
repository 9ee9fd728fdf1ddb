// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"os"

	"github.com/ClusterCockpit/kvstored/internal/util"
	log "github.com/ClusterCockpit/kvstored/pkg/log"
)

const configString = `# kvstored configuration file
host: 127.0.0.1
port: 8080
timeout: 0
dbfilename: dump.rb
logfile: redis.log
verbose: 0
admin_addr:
rate_limit: 0
dbfilename_gzip: 0
checkpoint_interval: 300
expiry_sweep_interval: 0
user:
group:
`

// initEnv writes a default configuration file to flagConfigFile,
// refusing to clobber one that already exists.
func initEnv() {
	if util.CheckFileExists(flagConfigFile) {
		log.Fatalf("%q already exists; cautiously exiting initialization.", flagConfigFile)
	}

	if err := os.WriteFile(flagConfigFile, []byte(configString), 0o666); err != nil {
		log.Fatalf("could not write default %q: %s", flagConfigFile, err.Error())
	}
}
