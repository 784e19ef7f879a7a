package util

// DCSO rdnscache
// Copyright (c) 2017, 2018, 2020, 2026, DCSO GmbH

import (
	"os"
	"strings"

	"github.com/DCSO/rdnscache/types"

	"github.com/buger/jsonparser"
)

// ToolName is a string containing the name of this software, lowercase.
var ToolName = "rdnscache"

// ToolNameUpper is a string containing the name of this software, uppercase.
var ToolNameUpper = "RDNSCACHE"

var evekeys = [][]string{
	[]string{"event_type"},     //  0
	[]string{"src_ip"},         //  1
	[]string{"src_port"},       //  2
	[]string{"dest_ip"},        //  3
	[]string{"dest_port"},      //  4
	[]string{"timestamp"},      //  5
	[]string{"proto"},          //  6
	[]string{"dns", "rrname"},  //  7
	[]string{"dns", "rcode"},   //  8
	[]string{"dns", "rdata"},   //  9
	[]string{"dns", "rrtype"},  // 10
	[]string{"dns", "type"},    // 11
	[]string{"dns", "version"}, // 12
	[]string{"dns", "answers"}, // 13
	[]string{"flow_id"},        // 14
}

func parseAnswers(e *types.Entry, value []byte) (parseerr error) {
	e.DNSAnswers = make([]types.DNSAnswer, 0)
	_, err := jsonparser.ArrayEach(value, func(mvalue []byte, dataType jsonparser.ValueType, offset int, err error) {
		var rrname, rdata, rrtype string
		var merr error
		if parseerr != nil {
			return
		}
		if err != nil {
			parseerr = err
			return
		}
		rdata, merr = jsonparser.GetString(mvalue, "rdata")
		if merr != nil {
			if merr != jsonparser.KeyPathNotFoundError {
				parseerr = merr
				return
			}
		}
		rrname, merr = jsonparser.GetString(mvalue, "rrname")
		if merr != nil {
			parseerr = merr
			return
		}
		rrtype, merr = jsonparser.GetString(mvalue, "rrtype")
		if merr != nil {
			parseerr = merr
			return
		}
		e.DNSAnswers = append(e.DNSAnswers, types.DNSAnswer{
			DNSRCode:  e.DNSRCode,
			DNSRData:  rdata,
			DNSRRName: rrname,
			DNSRRType: rrtype,
			DNSType:   e.DNSType,
		})
	})
	if parseerr == nil {
		parseerr = err
	}
	return parseerr
}

// ParseJSON extracts relevant fields from an EVE JSON entry into an Entry struct.
func ParseJSON(json []byte) (e types.Entry, parseerr error) {
	var answers []byte
	e = types.Entry{}
	jsonparser.EachKey(json, func(idx int, value []byte, vt jsonparser.ValueType,
		err error) {
		if parseerr != nil {
			return
		}
		if err != nil {
			parseerr = err
			return
		}
		switch idx {
		case 0:
			e.EventType, err = jsonparser.ParseString(value)
		case 1:
			e.SrcIP = string(value[:])
		case 2:
			e.SrcPort, err = jsonparser.ParseInt(value)
		case 3:
			e.DestIP = string(value[:])
		case 4:
			e.DestPort, err = jsonparser.ParseInt(value)
		case 5:
			e.Timestamp = string(value[:])
		case 6:
			e.Proto = string(value[:])
		case 7:
			e.DNSRRName, err = jsonparser.ParseString(value)
		case 8:
			e.DNSRCode, err = jsonparser.ParseString(value)
		case 9:
			e.DNSRData, err = jsonparser.ParseString(value)
		case 10:
			e.DNSRRType, err = jsonparser.ParseString(value)
		case 11:
			e.DNSType, err = jsonparser.ParseString(value)
		case 12:
			e.DNSVersion, err = jsonparser.ParseInt(value)
		case 13:
			// the version key may come after the answers
			answers = value
		case 14:
			e.FlowID = string(value[:])
		}
		if err != nil {
			parseerr = err
		}
	}, evekeys...)
	if parseerr == nil && answers != nil && e.DNSVersion == 2 {
		parseerr = parseAnswers(&e, answers)
	}
	e.JSONLine = string(json)

	return e, parseerr
}

// GetSensorID returns the machine ID of the system it is being run on, or
// the string "<no_machine_id>"" if the ID cannot be determined.
func GetSensorID() (string, error) {
	if _, err := os.Stat("/etc/machine-id"); os.IsNotExist(err) {
		return "<no_machine_id>", nil
	}
	b, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "<no_machine_id>", nil
	}
	return strings.TrimSpace(string(b)), nil
}
