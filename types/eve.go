package types

// DCSO rdnscache
// Copyright (c) 2019, 2026, DCSO GmbH

import (
	"encoding/json"
	"strings"
	"time"
)

// SuricataTimestampFormat is a Go time formatting string describing the
// timestamp format used by Suricata's EVE JSON output.
const SuricataTimestampFormat = "2006-01-02T15:04:05.999999-0700"

// SuriTime is a time.Time that (un)marshals in Suricata's timestamp format.
type SuriTime struct{ time.Time }

// UnmarshalJSON parses a Suricata timestamp.
func (t *SuriTime) UnmarshalJSON(b []byte) error {
	data := strings.Trim(string(b), `"`)
	if data == "null" || data == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = time.Parse(SuricataTimestampFormat, data)
	return err
}

// MarshalJSON writes a Suricata timestamp.
func (t *SuriTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(SuricataTimestampFormat))
}

// DNSAnswerEvent is a single answer in an EVE v2 DNS event.
type DNSAnswerEvent struct {
	RRName string `json:"rrname"`
	RRType string `json:"rrtype"`
	TTL    int    `json:"ttl,omitempty"`
	RData  string `json:"rdata,omitempty"`
}

// DNSEvent is the 'dns' sub-object of an EVE event.
type DNSEvent struct {
	Version int              `json:"version,omitempty"`
	Type    string           `json:"type,omitempty"`
	ID      int              `json:"id,omitempty"`
	RRName  string           `json:"rrname,omitempty"`
	RRType  string           `json:"rrtype,omitempty"`
	RCode   string           `json:"rcode,omitempty"`
	RData   string           `json:"rdata,omitempty"`
	Answers []DNSAnswerEvent `json:"answers,omitempty"`
}

// EveEvent is the typed representation of a Suricata EVE event, covering
// the parts relevant to name enrichment.
type EveEvent struct {
	Timestamp *SuriTime `json:"timestamp,omitempty"`
	EventType string    `json:"event_type"`
	FlowID    int64     `json:"flow_id,omitempty"`
	SrcIP     string    `json:"src_ip,omitempty"`
	SrcPort   int       `json:"src_port,omitempty"`
	SrcHost   string    `json:"src_host,omitempty"`
	DestIP    string    `json:"dest_ip,omitempty"`
	DestPort  int       `json:"dest_port,omitempty"`
	DestHost  string    `json:"dest_host,omitempty"`
	Proto     string    `json:"proto,omitempty"`
	DNS       *DNSEvent `json:"dns,omitempty"`
}
