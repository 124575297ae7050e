package bootstrap

import "fmt"

// Action es un efecto que el gateway ejecuta tras una transición, en orden.
type Action int

const (
	SendAppAuth Action = iota + 1
	SendAccountAuth
	RequestTrader
	ApplyTrader
	RequestSymbols
	IndexSymbols
	RequestSymbolSpecs
	RequestPositions
	ApplySymbolSpecs
	SeedPositions
	BootstrapComplete
	Dispatch
	LogUnexpected
	ArmStageTimer
	StopStageTimer
	RecycleBroker
	ResetSession
)

var actionNames = map[Action]string{
	SendAppAuth:        "send_app_auth",
	SendAccountAuth:    "send_account_auth",
	RequestTrader:      "request_trader",
	ApplyTrader:        "apply_trader",
	RequestSymbols:     "request_symbols",
	IndexSymbols:       "index_symbols",
	RequestSymbolSpecs: "request_symbol_specs",
	RequestPositions:   "request_positions",
	ApplySymbolSpecs:   "apply_symbol_specs",
	SeedPositions:      "seed_positions",
	BootstrapComplete:  "bootstrap_complete",
	Dispatch:           "dispatch",
	LogUnexpected:      "log_unexpected",
	ArmStageTimer:      "arm_stage_timer",
	StopStageTimer:     "stop_stage_timer",
	RecycleBroker:      "recycle_broker",
	ResetSession:       "reset_session",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action_%d", int(a))
}
