// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import "flag"

var (
	flagInit, flagVersion, flagGops bool
	flagConfigFile, flagEnvFile     string
)

func cliInit() {
	flag.BoolVar(&flagInit, "init", false, "Write a default configuration file and exit")
	flag.BoolVar(&flagVersion, "version", false, "Show version information and exit")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagConfigFile, "config", "./kvstored.conf", "Path to the `name: value` configuration file")
	flag.StringVar(&flagEnvFile, "envfile", "", "Optional KEY=VALUE file to load into the process environment before startup")
	flag.Parse()
}
