package config

// ProtocolFee captures the fee applied to claimed yield. FeeSteps is in 0.1%
// increments, so the uint8 range caps the fee at 25.5%; a nonzero fee
// requires a recipient address.
type ProtocolFee struct {
	FeeSteps  uint8
	Recipient string
}

// Pauses flips individual modules into read-only mode.
type Pauses struct {
	Gate bool
}

// IsPaused reports whether the named module is paused, satisfying the pause
// view consumed by native modules.
func (p Pauses) IsPaused(module string) bool {
	switch module {
	case "gate":
		return p.Gate
	default:
		return false
	}
}

// Global bundles the runtime configuration values enforced by ValidateConfig.
type Global struct {
	ProtocolFee ProtocolFee
	Pauses      Pauses
}
