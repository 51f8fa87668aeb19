package market

import (
	"fmt"
	"time"
)

// EventType identifies a scheduled market event.
type EventType string

const (
	EventEarnings   EventType = "earnings"
	EventDividend   EventType = "dividend"
	EventSettlement EventType = "sq"
)

// EventRiskLevel grades the risk a scheduled event poses to a swing position.
// Distinct from the regime RiskLevel bands.
type EventRiskLevel string

const (
	EventRiskNone     EventRiskLevel = "none"
	EventRiskLow      EventRiskLevel = "low"
	EventRiskMedium   EventRiskLevel = "medium"
	EventRiskHigh     EventRiskLevel = "high"
	EventRiskCritical EventRiskLevel = "critical"
)

var eventRiskPriority = map[EventRiskLevel]int{
	EventRiskCritical: 5,
	EventRiskHigh:     4,
	EventRiskMedium:   3,
	EventRiskLow:      2,
	EventRiskNone:     1,
}

// EventInput is everything the gate needs for one symbol on one date.
// PositionPnL is the unrealized percentage result and is only meaningful when
// a position is held.
type EventInput struct {
	Symbol         string
	Date           time.Time
	EarningsDate   *time.Time
	ExDividendDate *time.Time
	PositionPnL    *float64
}

// UpcomingEvent is the nearest scheduled event at or after the check date.
type UpcomingEvent struct {
	Type      EventType `json:"event_type"`
	Date      time.Time `json:"event_date"`
	DaysUntil int       `json:"days_until"`
}

// EventCalendarResult is the combined entry/exit decision across all event
// rules.
type EventCalendarResult struct {
	Symbol       string         `json:"symbol"`
	EntryAllowed bool           `json:"entry_allowed"`
	ExitRequired bool           `json:"exit_required"`
	RiskLevel    EventRiskLevel `json:"risk_level"`
	NearestEvent *UpcomingEvent `json:"nearest_event,omitempty"`
	Reason       string         `json:"reason"`
}

// EventConfig holds the gate's window parameters.
type EventConfig struct {
	EarningsExcludeBefore  int     `mapstructure:"earnings_exclude_before"`
	EarningsExcludeAfter   int     `mapstructure:"earnings_exclude_after"`
	EarningsCrossThreshold float64 `mapstructure:"earnings_cross_threshold"`
	DividendExcludeDays    int     `mapstructure:"dividend_exclude_days"`
}

// DefaultEventConfig returns the stock gate parameters: an asymmetric
// earnings window of two days before through one day after, an 8% cross
// threshold, and a one-day dividend exclusion.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		EarningsExcludeBefore:  2,
		EarningsExcludeAfter:   1,
		EarningsCrossThreshold: 8.0,
		DividendExcludeDays:    1,
	}
}

// EventGate decides whether entering or exiting a position is permitted given
// proximity to earnings, dividend ex-dates, and monthly SQ settlement days.
type EventGate interface {
	Evaluate(input EventInput) EventCalendarResult
	NextSettlementDate(from time.Time) time.Time
}

type eventGate struct {
	cfg EventConfig
}

// NewEventGate creates an EventGate with the given configuration.
func NewEventGate(cfg EventConfig) EventGate {
	return &eventGate{cfg: cfg}
}

type eventEvaluation struct {
	entryAllowed bool
	exitRequired bool
	riskLevel    EventRiskLevel
	reason       string
}

type scheduledEvent struct {
	eventType EventType
	date      time.Time
	daysUntil int
}

// Evaluate runs the three sub-evaluations and combines them: entry requires
// all three to allow it, exit triggers when any requires it, and the highest
// risk level supplies the reason. Ties keep evaluation order: earnings,
// dividend, settlement.
func (g *eventGate) Evaluate(input EventInput) EventCalendarResult {
	checkDate := dateKey(input.Date)
	var events []scheduledEvent

	earnings := g.evaluateEarnings(checkDate, input.EarningsDate, input.PositionPnL)
	if input.EarningsDate != nil {
		earningsDate := dateKey(*input.EarningsDate)
		events = append(events, scheduledEvent{EventEarnings, earningsDate, daysBetween(checkDate, earningsDate)})
	}

	dividend := g.evaluateDividend(checkDate, input.ExDividendDate)
	if input.ExDividendDate != nil {
		exDate := dateKey(*input.ExDividendDate)
		events = append(events, scheduledEvent{EventDividend, exDate, daysBetween(checkDate, exDate)})
	}

	settlementDate := g.NextSettlementDate(checkDate)
	settlement := g.evaluateSettlement(checkDate, settlementDate)
	events = append(events, scheduledEvent{EventSettlement, settlementDate, daysBetween(checkDate, settlementDate)})

	return g.combine(input.Symbol, []eventEvaluation{earnings, dividend, settlement}, events)
}

func (g *eventGate) evaluateEarnings(checkDate time.Time, earningsDate *time.Time, positionPnL *float64) eventEvaluation {
	if earningsDate == nil {
		return eventEvaluation{entryAllowed: true, riskLevel: EventRiskNone}
	}

	daysUntil := daysBetween(checkDate, dateKey(*earningsDate))

	if -g.cfg.EarningsExcludeAfter <= daysUntil && daysUntil <= g.cfg.EarningsExcludeBefore {
		if positionPnL != nil && daysUntil > 0 {
			if *positionPnL >= g.cfg.EarningsCrossThreshold {
				return eventEvaluation{
					entryAllowed: false,
					exitRequired: false,
					riskLevel:    EventRiskCritical,
					reason: fmt.Sprintf("Earnings in %d day(s), unrealized gain %.1f%% permits holding through",
						daysUntil, *positionPnL),
				}
			}
			return eventEvaluation{
				entryAllowed: false,
				exitRequired: true,
				riskLevel:    EventRiskCritical,
				reason: fmt.Sprintf("Earnings in %d day(s), unrealized gain %.1f%% below %.1f%%, exit recommended",
					daysUntil, *positionPnL, g.cfg.EarningsCrossThreshold),
			}
		}
		if daysUntil >= 0 {
			return eventEvaluation{
				entryAllowed: false,
				riskLevel:    EventRiskCritical,
				reason:       fmt.Sprintf("Earnings in %d day(s), inside exclusion window", daysUntil),
			}
		}
		return eventEvaluation{
			entryAllowed: false,
			riskLevel:    EventRiskCritical,
			reason:       fmt.Sprintf("%d day(s) after earnings, inside exclusion window", -daysUntil),
		}
	}

	if daysUntil > 0 && daysUntil <= 5 {
		return eventEvaluation{
			entryAllowed: true,
			riskLevel:    EventRiskHigh,
			reason:       fmt.Sprintf("Earnings approaching in %d day(s)", daysUntil),
		}
	}

	return eventEvaluation{entryAllowed: true, riskLevel: EventRiskNone}
}

func (g *eventGate) evaluateDividend(checkDate time.Time, exDividendDate *time.Time) eventEvaluation {
	if exDividendDate == nil {
		return eventEvaluation{entryAllowed: true, riskLevel: EventRiskNone}
	}

	daysUntil := daysBetween(checkDate, dateKey(*exDividendDate))
	if daysUntil == g.cfg.DividendExcludeDays {
		return eventEvaluation{
			entryAllowed: false,
			riskLevel:    EventRiskMedium,
			reason:       fmt.Sprintf("Ex-dividend in %d day(s), last day with dividend rights", daysUntil),
		}
	}
	return eventEvaluation{entryAllowed: true, riskLevel: EventRiskNone}
}

func (g *eventGate) evaluateSettlement(checkDate, settlementDate time.Time) eventEvaluation {
	if daysBetween(checkDate, settlementDate) == 0 {
		return eventEvaluation{
			entryAllowed: true,
			riskLevel:    EventRiskLow,
			reason:       "SQ settlement day, caution around the open",
		}
	}
	return eventEvaluation{entryAllowed: true, riskLevel: EventRiskNone}
}

// NextSettlementDate returns the next monthly SQ settlement day (second
// Friday) at or after from, rolling into the next month and across December
// into January when needed.
func (g *eventGate) NextSettlementDate(from time.Time) time.Time {
	fromDate := dateKey(from)
	settlement := secondFriday(fromDate.Year(), fromDate.Month())
	if !settlement.Before(fromDate) {
		return settlement
	}
	if fromDate.Month() == time.December {
		return secondFriday(fromDate.Year()+1, time.January)
	}
	return secondFriday(fromDate.Year(), fromDate.Month()+1)
}

func (g *eventGate) combine(symbol string, evaluations []eventEvaluation, events []scheduledEvent) EventCalendarResult {
	entryAllowed := true
	exitRequired := false
	highest := evaluations[0]
	for _, eval := range evaluations {
		entryAllowed = entryAllowed && eval.entryAllowed
		exitRequired = exitRequired || eval.exitRequired
		if eventRiskPriority[eval.riskLevel] > eventRiskPriority[highest.riskLevel] {
			highest = eval
		}
	}

	reason := highest.reason
	if reason == "" {
		reason = "No upcoming events"
	}

	var nearest *UpcomingEvent
	for _, ev := range events {
		if ev.daysUntil < 0 {
			continue
		}
		if nearest == nil || ev.daysUntil < nearest.DaysUntil {
			nearest = &UpcomingEvent{Type: ev.eventType, Date: ev.date, DaysUntil: ev.daysUntil}
		}
	}

	return EventCalendarResult{
		Symbol:       symbol,
		EntryAllowed: entryAllowed,
		ExitRequired: exitRequired,
		RiskLevel:    highest.riskLevel,
		NearestEvent: nearest,
		Reason:       reason,
	}
}

func secondFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7)
}

func daysBetween(from, to time.Time) int {
	return int(dateKey(to).Sub(dateKey(from)).Hours() / 24)
}
