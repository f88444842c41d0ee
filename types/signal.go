package types

type Signal string

const (
	SignalNone      Signal = "NONE"
	SignalEnterLong Signal = "ENTER_LONG"
	SignalExitLong  Signal = "EXIT_LONG"
)
