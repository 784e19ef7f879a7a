package main

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	cmd "github.com/DCSO/rdnscache/cmd/rdnscache/cmds"
)

func main() {
	cmd.Execute()
}
