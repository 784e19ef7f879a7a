package cmd

// DCSO rdnscache
// Copyright (c) 2017, 2026, DCSO GmbH

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rdnscache",
	Short: "address to hostname cache for Suricata EVE-JSON",
	Long: `rdnscache keeps a reverse lookup cache of IP addresses seen in
Suricata EVE-JSON events. Hostnames are learned passively from DNS answers
and, if enabled, actively via reverse DNS lookups. Events can be forwarded
with their source and destination hostnames added.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once
// to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rdnscache.yaml)")

	// Management endpoint options, shared by server and client commands
	rootCmd.PersistentFlags().StringP("mgmt-socket", "", "/tmp/rdnscache-mgmt.sock", "Socket path for management server")
	viper.BindPFlag("mgmt.socket", rootCmd.PersistentFlags().Lookup("mgmt-socket"))
	rootCmd.PersistentFlags().StringP("mgmt-host", "", "", "hostname:port definition for management server (overrides socket)")
	viper.BindPFlag("mgmt.host", rootCmd.PersistentFlags().Lookup("mgmt-host"))
	rootCmd.PersistentFlags().StringP("mgmt-network", "", "tcp", "network (tcp, tcp4, tcp6) for management server host")
	viper.BindPFlag("mgmt.network", rootCmd.PersistentFlags().Lookup("mgmt-network"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			log.Fatal(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".rdnscache")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Info("using config file: ", viper.ConfigFileUsed())
	}
}
