package catalyst

// Urgency is the four-level severity attached to catalysts. It drives how
// permissive the trigger gates are.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// Rank orders urgencies for comparison and highest-urgency selection.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// Escalate bumps an urgency one level, capped at CRITICAL.
func (u Urgency) Escalate() Urgency {
	switch u {
	case UrgencyLow:
		return UrgencyMedium
	case UrgencyMedium:
		return UrgencyHigh
	case UrgencyHigh:
		return UrgencyCritical
	default:
		return u
	}
}

// Multiplier scales an event type's base impact by urgency.
func (u Urgency) Multiplier() float64 {
	switch u {
	case UrgencyCritical:
		return 1.5
	case UrgencyHigh:
		return 1.0
	case UrgencyMedium:
		return 0.7
	default:
		return 0.5
	}
}

// ParseUrgency normalizes a stored urgency string, defaulting to LOW for
// anything unrecognized.
func ParseUrgency(raw string) Urgency {
	switch Urgency(raw) {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return Urgency(raw)
	default:
		return UrgencyLow
	}
}

// EventType is the closed taxonomy of catalyst events. Keeping it closed
// makes the base-impact lookup exhaustive; a typo cannot silently estimate a
// zero impact.
type EventType string

const (
	EventEarningsBeat   EventType = "earnings_beat"
	EventEarningsMiss   EventType = "earnings_miss"
	EventEarningsReport EventType = "earnings_report"

	EventAnalystUpgrade   EventType = "analyst_upgrade"
	EventAnalystDowngrade EventType = "analyst_downgrade"
	EventAnalystCoverage  EventType = "analyst_coverage"

	EventFDAApproval  EventType = "fda_approval"
	EventFDARejection EventType = "fda_rejection"
	EventFDAUpdate    EventType = "fda_update"

	EventMergerAnnouncement EventType = "merger_announcement"
	EventMergerTerminated   EventType = "merger_terminated"
	EventMergerUpdate       EventType = "merger_update"

	EventLeadershipAppointment EventType = "leadership_appointment"
	EventLeadershipDeparture   EventType = "leadership_departure"
	EventLeadershipChange      EventType = "leadership_change"

	EventLegalResolution EventType = "legal_resolution"
	EventLegalAction     EventType = "legal_action"
	EventLegalUpdate     EventType = "legal_update"

	EventProductLaunch EventType = "product_launch"
	EventProductRecall EventType = "product_recall"
	EventProductUpdate EventType = "product_update"

	EventGeneralPositiveNews EventType = "general_positive_news"
	EventGeneralNegativeNews EventType = "general_negative_news"
)

// baseImpact is the signed score-impact estimate per event type, before
// urgency scaling. Covers every EventType constant.
var baseImpact = map[EventType]float64{
	EventEarningsBeat:   10,
	EventEarningsMiss:   -10,
	EventEarningsReport: 3,

	EventAnalystUpgrade:   8,
	EventAnalystDowngrade: -8,
	EventAnalystCoverage:  3,

	EventFDAApproval:  15,
	EventFDARejection: -15,
	EventFDAUpdate:    5,

	EventMergerAnnouncement: 12,
	EventMergerTerminated:   -10,
	EventMergerUpdate:       4,

	EventLeadershipAppointment: 5,
	EventLeadershipDeparture:   -6,
	EventLeadershipChange:      -3,

	EventLegalResolution: 6,
	EventLegalAction:     -10,
	EventLegalUpdate:     -4,

	EventProductLaunch: 7,
	EventProductRecall: -9,
	EventProductUpdate: 3,

	EventGeneralPositiveNews: 4,
	EventGeneralNegativeNews: -5,
}

// KnownEventTypes lists the full closed taxonomy.
func KnownEventTypes() []EventType {
	types := make([]EventType, 0, len(baseImpact))
	for t := range baseImpact {
		types = append(types, t)
	}
	return types
}

// EstimateImpact returns the signed score-impact estimate for an event type
// at a given urgency.
func EstimateImpact(eventType EventType, urgency Urgency) float64 {
	return baseImpact[eventType] * urgency.Multiplier()
}
