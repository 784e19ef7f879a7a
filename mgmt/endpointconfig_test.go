package mgmt

// DCSO rdnscache
// Copyright (c) 2026, DCSO GmbH

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestEndpointConfigFromViper(t *testing.T) {
	defer viper.Reset()

	viper.Set("mgmt.socket", "/tmp/rdnscache-test.sock")
	cfg := EndpointConfigFromViper()
	assert.Equal(t, "unix", cfg.Network)
	assert.False(t, cfg.Disable)
	assert.Equal(t, "unix:/tmp/rdnscache-test.sock", cfg.DialString())

	viper.Set("mgmt.host", "127.0.0.1:8989")
	cfg = EndpointConfigFromViper()
	assert.Equal(t, "tcp", cfg.Network)
	assert.Equal(t, "dns:///127.0.0.1:8989", cfg.DialString())

	viper.Set("mgmt.network", "tcp6")
	cfg = EndpointConfigFromViper()
	assert.Equal(t, "tcp6", cfg.Network)
}

func TestEndpointConfigDisabled(t *testing.T) {
	defer viper.Reset()

	viper.Set("mgmt.socket", "")
	assert.True(t, EndpointConfigFromViper().Disable)

	viper.Set("mgmt.socket", "/tmp/x.sock")
	viper.Set("mgmt.disable", true)
	assert.True(t, EndpointConfigFromViper().Disable)
}
