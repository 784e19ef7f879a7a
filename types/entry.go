package types

// DCSO rdnscache
// Copyright (c) 2017, 2018, 2026, DCSO GmbH

const (
	// EventTypeDNS is the EVE event type for DNS events.
	EventTypeDNS = "dns"
	// EventTypeFlow is the EVE event type for flow events.
	EventTypeFlow = "flow"
	// EventTypeAlert is the EVE event type for alerts.
	EventTypeAlert = "alert"
)

// DNSAnswer is a single DNS answer as observed by Suricata
type DNSAnswer struct {
	DNSRRName string
	DNSRRType string
	DNSRCode  string
	DNSRData  string
	DNSType   string
}

// Entry is a collection of data that needs to be parsed FAST from the entry
type Entry struct {
	SrcIP      string
	SrcHost    string
	SrcPort    int64
	DestIP     string
	DestHost   string
	DestPort   int64
	Timestamp  string
	EventType  string
	Proto      string
	JSONLine   string
	DNSVersion int64
	DNSRRName  string
	DNSRRType  string
	DNSRCode   string
	DNSRData   string
	DNSType    string
	DNSAnswers []DNSAnswer
	FlowID     string
}
