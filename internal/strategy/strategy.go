// Package strategy holds the declarative Strategy record and the mutable/
// immutable position records that flow through the simulation executor:
// OpenPosition during a trade's lifetime, TradeResult once it closes.
package strategy

import (
	"github.com/atlas-desktop/quantback/internal/rule"
	"github.com/atlas-desktop/quantback/pkg/money"
)

// SizingMode is the four position-sizing tags of spec §4.4.
type SizingMode int

const (
	FixedLots SizingMode = iota
	FixedAmount
	PercentEquity
	RiskBased
)

// PositionSizing configures how C4 computes the lot size for a new position.
type PositionSizing struct {
	Mode  SizingMode
	Value float64
}

// LevelKind is the distance-computation method for SL/TP/TS. RiskReward is
// only meaningful on TakeProfit (it multiplies the SL distance).
type LevelKind int

const (
	Pips LevelKind = iota
	Percentage
	ATR
	RiskReward
)

// StopConfig is shared shape for stop-loss, take-profit and trailing-stop
// declarations; ATRPeriod is only consulted when Kind == ATR.
type StopConfig struct {
	Kind      LevelKind
	Value     float64
	ATRPeriod int
}

// TradeDirection restricts which entry rule sequences are evaluated.
type TradeDirection int

const (
	Long TradeDirection = iota
	Short
	Both
)

// TradingHours is an inclusive minute-of-day window; if Start > End it
// wraps across midnight (spec §4.6: "t >= start OR t <= end").
type TradingHours struct {
	StartMinute int
	EndMinute   int
}

// Strategy is the full declarative definition C6 executes: four independent
// rule sequences plus sizing/risk/cost configuration (spec §3).
type Strategy struct {
	LongEntry  []rule.Rule
	ShortEntry []rule.Rule
	LongExit   []rule.Rule
	ShortExit  []rule.Rule

	Sizing       PositionSizing
	StopLoss     *StopConfig
	TakeProfit   *StopConfig
	TrailingStop *StopConfig

	Costs money.TradingCosts

	Direction TradeDirection

	TradingHours   *TradingHours
	MaxDailyTrades int
	// CloseTradesAtMinute force-closes any open position once the bar's
	// minute-of-day reaches this value, nil means no forced close time.
	CloseTradesAtMinute *int
}

// Sequences returns the four rule sequences in a fixed order, convenient for
// callers (C3's lookback planner, validation) that need to walk all of them.
func (s *Strategy) Sequences() [][]rule.Rule {
	return [][]rule.Rule{s.LongEntry, s.ShortEntry, s.LongExit, s.ShortExit}
}

// PositionDirection is which side an open position or closed trade took.
type PositionDirection int

const (
	DirLong PositionDirection = iota
	DirShort
)

// OpenPosition is the mutable record tracked from entry to close (spec §3).
type OpenPosition struct {
	Direction        PositionDirection
	EntryPrice       float64
	EntryTimeMicros  int64
	EntryBar         int
	Lots             float64
	StopLoss         float64
	TakeProfit       float64
	TrailingDistance float64
	HasStopLoss      bool
	HasTakeProfit    bool
	HasTrailingStop  bool

	HighestSinceEntry float64
	LowestSinceEntry  float64
	MAEPips           float64
	MFEPips           float64

	DailyTradeCount int
}

// CloseReason is why a position was closed, recorded on TradeResult.
type CloseReason int

const (
	ReasonSignal CloseReason = iota
	ReasonStopLoss
	ReasonTakeProfit
	ReasonTrailingStop
	ReasonEndOfData
	ReasonTimeClose
)

func (r CloseReason) String() string {
	switch r {
	case ReasonSignal:
		return "signal"
	case ReasonStopLoss:
		return "stop_loss"
	case ReasonTakeProfit:
		return "take_profit"
	case ReasonTrailingStop:
		return "trailing_stop"
	case ReasonEndOfData:
		return "end_of_data"
	case ReasonTimeClose:
		return "time_close"
	default:
		return "unknown"
	}
}

// TradeResult is the immutable post-close record appended to a run's trade
// list (spec §3).
type TradeResult struct {
	Direction       PositionDirection
	EntryTimeMicros int64
	ExitTimeMicros  int64
	EntryPrice      float64
	ExitPrice       float64
	Lots            float64
	PnLMoney        float64
	PnLPips         float64
	Commission      float64
	CloseReason     CloseReason
	DurationBars    int
	DurationHuman   string
	MAEPips         float64
	MFEPips         float64
}
