package util

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	filterLock sync.RWMutex
	filter     = make(map[string]bool)
)

// ForwardAllEvents is set to true if the user has selected to skip event
// type filtering. It must not be changed while events are being forwarded.
var ForwardAllEvents bool

// PrepareEventFilter replaces the set of event types to be passed on to the
// output socket. Type names are matched case-insensitively, blank entries are
// ignored.
func PrepareEventFilter(list []string, forwardall bool) {
	logger := log.WithFields(log.Fields{
		"domain": "forward",
	})
	newFilter := make(map[string]bool)
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || newFilter[s] {
			continue
		}
		logger.WithField("type", s).Info("event type added")
		newFilter[s] = true
	}

	filterLock.Lock()
	filter = newFilter
	ForwardAllEvents = forwardall
	filterLock.Unlock()

	if forwardall {
		logger.Info("forwarding all event types")
	}
}

// GetAllowedTypes returns the forwarded event types in sorted order.
func GetAllowedTypes() []string {
	filterLock.RLock()
	defer filterLock.RUnlock()
	allowedTypes := make([]string, 0, len(filter))
	for k := range filter {
		allowedTypes = append(allowedTypes, k)
	}
	sort.Strings(allowedTypes)
	return allowedTypes
}

// AllowType returns true if events of type t are to be forwarded.
func AllowType(t string) bool {
	filterLock.RLock()
	defer filterLock.RUnlock()
	return ForwardAllEvents || filter[strings.ToLower(t)]
}
