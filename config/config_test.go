package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	addrB = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	addrC = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
)

func setRequiredAddresses(t *testing.T) {
	t.Helper()
	t.Setenv("PULSE_NFT_ADDRESS", addrA)
	t.Setenv("PULSE_MINTER_ADDRESS", addrB)
	t.Setenv("PULSE_TOKEN_ADDRESS", addrC)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredAddresses(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, []string{
		"https://ipfs.io/ipfs/",
		"https://w3s.link/ipfs/",
		"https://gateway.pinata.cloud/ipfs/",
	}, cfg.Gateways)
	assert.Equal(t, 8*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "system_state:trigger_state", cfg.TriggerKey)
	assert.Equal(t, 60*time.Second, cfg.SyncInterval)
	assert.Equal(t, 8, cfg.SyncWorkers)
	assert.Empty(t, cfg.WalletKey)
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	setRequiredAddresses(t)
	t.Setenv("PULSE_RPC_URL", "http://node:8545")
	t.Setenv("PULSE_SYNC_INTERVAL", "30s")
	t.Setenv("PULSE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRequiresContractAddresses(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
}

func TestValidateRejectsMalformedAddress(t *testing.T) {
	setRequiredAddresses(t)
	t.Setenv("PULSE_NFT_ADDRESS", "not-an-address")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid address")
}
