package mgmt

// DCSO rdnscache
// Copyright (c) 2021, 2026, DCSO GmbH

import (
	"fmt"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// EndpointConfig describes where the management service listens and where
// clients reach it.
type EndpointConfig struct {
	ListenerAddress string
	ServerAddress   string
	Network         string
	TLSDisable      bool
	Disable         bool
}

// GRPCEndpointConfig adds gRPC server and dial options to an EndpointConfig.
type GRPCEndpointConfig struct {
	EndpointConfig
	ServerOptions []grpc.ServerOption
	DialOptions   []grpc.DialOption
}

// EndpointConfigFromViper builds the management endpoint from the mgmt.*
// settings. A configured host takes precedence over the Unix socket.
func EndpointConfigFromViper() GRPCEndpointConfig {
	cfg := GRPCEndpointConfig{
		EndpointConfig: EndpointConfig{
			Network:         "unix",
			ListenerAddress: viper.GetString("mgmt.socket"),
			// TODO: support TLS for TCP endpoints
			TLSDisable: true,
			Disable:    viper.GetBool("mgmt.disable"),
		},
		DialOptions: []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
	}
	if host := viper.GetString("mgmt.host"); host != "" {
		cfg.Network = viper.GetString("mgmt.network")
		if cfg.Network == "" {
			cfg.Network = "tcp"
		}
		cfg.ListenerAddress = host
		cfg.ServerAddress = host
	}
	if cfg.ListenerAddress == "" {
		cfg.Disable = true
	}
	return cfg
}

// DialString returns the target for grpc.Dial() matching the endpoint.
func (e GRPCEndpointConfig) DialString() string {
	if e.Network == "unix" {
		return fmt.Sprintf("unix:%s", e.ListenerAddress)
	}
	addr := e.ServerAddress
	if addr == "" {
		addr = e.ListenerAddress
	}
	return fmt.Sprintf("dns:///%s", addr)
}
