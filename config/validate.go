package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

func ValidateConfig(g Global) error {
	fee := g.ProtocolFee
	if fee.FeeSteps != 0 && fee.Recipient == "" {
		return fmt.Errorf("protocolFee: nonzero FeeSteps requires a Recipient")
	}
	if fee.Recipient != "" {
		if !common.IsHexAddress(fee.Recipient) {
			return fmt.Errorf("protocolFee: Recipient %q is not a hex address", fee.Recipient)
		}
		if common.HexToAddress(fee.Recipient) == (common.Address{}) {
			return fmt.Errorf("protocolFee: Recipient cannot be the zero address")
		}
	}
	return nil
}
