package cmd

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"context"
	"fmt"
	"time"

	"github.com/DCSO/rdnscache/mgmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func withClient(f func(ctx context.Context, c *mgmt.Client) error) {
	c, err := mgmt.Dial(mgmt.EndpointConfigFromViper())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("query.timeout"))
	defer cancel()
	if err := f(ctx, c); err != nil {
		log.Fatal(err)
	}
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query a running rdnscache instance",
}

var queryLookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "show cached state for an address",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *mgmt.Client) error {
			res, err := c.Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if !res.Found {
				fmt.Printf("%s\tnot cached\n", args[0])
				return nil
			}
			fmt.Printf("%s\t%s\t%s\n", args[0], res.State, res.Hostname)
			return nil
		})
	},
}

var queryResolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "resolve an address, using the cache first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *mgmt.Client) error {
			res, err := c.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", args[0], res.Status, res.Hostname)
			return nil
		})
	},
}

var queryInsertCmd = &cobra.Command{
	Use:   "insert <address> [hostname]",
	Short: "add a hostname for an address, no hostname adds a negative entry",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var hostname string
		if len(args) > 1 {
			hostname = args[1]
		}
		withClient(func(ctx context.Context, c *mgmt.Client) error {
			ok, err := c.Insert(ctx, args[0], hostname)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s\talready cached\n", args[0])
			}
			return nil
		})
	},
}

func makeToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s active resolution", use),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			withClient(func(ctx context.Context, c *mgmt.Client) error {
				return c.SetResolve(ctx, enabled)
			})
		},
	}
}

var queryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show cache statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withClient(func(ctx context.Context, c *mgmt.Client) error {
			st, err := c.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("entries:\t%d\nbuckets:\t%d\nresolve:\t%v\n",
				st.Entries, st.Buckets, st.ResolveEnabled)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryLookupCmd)
	queryCmd.AddCommand(queryResolveCmd)
	queryCmd.AddCommand(queryInsertCmd)
	queryCmd.AddCommand(makeToggleCmd("enable", true))
	queryCmd.AddCommand(makeToggleCmd("disable", false))
	queryCmd.AddCommand(queryStatsCmd)

	queryCmd.PersistentFlags().DurationP("timeout", "", 10*time.Second, "timeout for management requests")
	viper.BindPFlag("query.timeout", queryCmd.PersistentFlags().Lookup("timeout"))
}
