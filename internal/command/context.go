// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package command implements the registry and per-family handlers for
// every command in the keyspace's command surface. Each Handler
// receives an explicit Context rather than reaching for ambient
// singletons.
package command

import (
	"github.com/ClusterCockpit/kvstored/internal/config"
	"github.com/ClusterCockpit/kvstored/internal/keyspace"
	"github.com/ClusterCockpit/kvstored/internal/logger"
	"github.com/ClusterCockpit/kvstored/internal/persistence"
	"github.com/ClusterCockpit/kvstored/internal/pubsub"
)

// Client is what a handler needs to know about the connection issuing
// a command: its pub/sub identity and a place to mirror MONITOR
// output to.
type Client interface {
	pubsub.Subscriber
	logger.Monitor
}

// Context bundles every shared collaborator a handler may touch. It
// is built once per connection and passed through on every dispatch.
type Context struct {
	KS       *keyspace.Keyspace
	PubSub   *pubsub.Registry
	Config   *config.Config
	Persist  persistence.Sender
	Log      logger.Sender
	Monitors *logger.Logger
	Client   Client
}
