package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesSettings(t *testing.T) {
	path := writeConfig(t, `Service = "timeless"
Environment = "testnet"
DataDir = "./data"
MetricsAddress = ":9464"

[Global.ProtocolFee]
FeeSteps = 100
Recipient = "0x00000000000000000000000000000000000000fe"

[Global.Pauses]
Gate = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "timeless", cfg.Service)
	require.Equal(t, "testnet", cfg.Environment)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, ":9464", cfg.MetricsAddress)
	require.Equal(t, uint8(100), cfg.Global.ProtocolFee.FeeSteps)
	require.True(t, cfg.Global.Pauses.Gate)
	require.True(t, cfg.Global.Pauses.IsPaused("gate"))
	require.False(t, cfg.Global.Pauses.IsPaused("factory"))
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "timeless", cfg.Service)
	require.NotEmpty(t, cfg.DataDir)
	require.FileExists(t, path)

	// Loading again reads the file it just wrote.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Service, again.Service)
}

func TestLoadRejectsFeeWithoutRecipient(t *testing.T) {
	path := writeConfig(t, `Service = "timeless"

[Global.ProtocolFee]
FeeSteps = 50
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Recipient")
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig(Global{}))
	require.Error(t, ValidateConfig(Global{ProtocolFee: ProtocolFee{FeeSteps: 1}}))
	require.Error(t, ValidateConfig(Global{ProtocolFee: ProtocolFee{FeeSteps: 1, Recipient: "not-hex"}}))
	require.Error(t, ValidateConfig(Global{ProtocolFee: ProtocolFee{
		FeeSteps:  1,
		Recipient: "0x0000000000000000000000000000000000000000",
	}}))
	require.NoError(t, ValidateConfig(Global{ProtocolFee: ProtocolFee{
		FeeSteps:  1,
		Recipient: "0x00000000000000000000000000000000000000fe",
	}}))
}

func TestFeeInfo(t *testing.T) {
	info, err := Global{ProtocolFee: ProtocolFee{
		FeeSteps:  100,
		Recipient: "0x00000000000000000000000000000000000000fe",
	}}.FeeInfo()
	require.NoError(t, err)
	require.Equal(t, uint8(100), info.FeeSteps)
	require.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000fe"), info.Recipient)

	zero, err := Global{}.FeeInfo()
	require.NoError(t, err)
	require.Equal(t, uint8(0), zero.FeeSteps)
}
