package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/native/factory"
)

// FeeInfo parses the configured protocol fee into the runtime value consumed
// by the claim-token factory.
func (g Global) FeeInfo() (factory.ProtocolFeeInfo, error) {
	if err := ValidateConfig(g); err != nil {
		return factory.ProtocolFeeInfo{}, fmt.Errorf("invalid global.protocolFee: %w", err)
	}
	info := factory.ProtocolFeeInfo{FeeSteps: g.ProtocolFee.FeeSteps}
	if g.ProtocolFee.Recipient != "" {
		info.Recipient = common.HexToAddress(g.ProtocolFee.Recipient)
	}
	return info, nil
}
