package cmd

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	version = "0.1.0"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show rdnscache version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
