package processing

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"github.com/DCSO/rdnscache/types"
	"github.com/DCSO/rdnscache/util"
)

// Handler is a pipeline stage acting on events of the types it lists. A
// returned error is logged and does not stop the pipeline.
type Handler interface {
	GetEventTypes() []string
	GetName() string
	Consume(*types.Entry) error
}

// ConcurrentHandler is a Handler with background work, such as stats
// submission or forwarding, that must be started and stopped.
type ConcurrentHandler interface {
	Handler
	Run()
	Stop(chan bool)
}

// StatsGeneratingHandler is a Handler that periodically submits performance
// statistics.
type StatsGeneratingHandler interface {
	Handler
	SubmitStats(*util.PerformanceStatsEncoder)
}
