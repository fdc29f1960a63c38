package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

var (
	selectionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moqtracksel_selection_total",
		Help: "Total number of renderer selections by track type, mode and reason",
	}, []string{"track_type", "mode", "reason"})

	selectionPassTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moqtracksel_selection_pass_total",
		Help: "Total number of selection passes by outcome",
	}, []string{"outcome"})

	subscriptionSwitchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moqtracksel_subscription_switch_total",
		Help: "Total number of subscription switches caused by a changed selection",
	}, []string{"track_type"})

	configVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moqtracksel_config_version",
		Help: "Current version of the track selection preferences",
	})
)

// RecordSelection records the outcome for one renderer. It matches trackselection.Observer.
func RecordSelection(trackType trackselection.TrackType, sel *trackselection.Selection) {
	mode, reason := "disabled", "none"
	if sel != nil {
		mode = "fixed"
		if sel.Adaptive {
			mode = "adaptive"
		}
		reason = string(sel.Reason)
	}
	selectionTotal.WithLabelValues(
		normalizeTrackTypeLabel(trackType),
		mode,
		normalizeReasonLabel(reason),
	).Inc()
}

// RecordSelectionPass records whether a selection pass succeeded.
func RecordSelectionPass(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	selectionPassTotal.WithLabelValues(outcome).Inc()
}

// RecordSubscriptionSwitch records a subscription change for a renderer.
func RecordSubscriptionSwitch(trackType trackselection.TrackType) {
	subscriptionSwitchTotal.WithLabelValues(normalizeTrackTypeLabel(trackType)).Inc()
}

// RecordConfigVersion publishes the preferences version. It matches the Config
// invalidation listener.
func RecordConfigVersion(version uint64) {
	configVersion.Set(float64(version))
}

func normalizeTrackTypeLabel(t trackselection.TrackType) string {
	switch t {
	case trackselection.TrackTypeVideo, trackselection.TrackTypeAudio,
		trackselection.TrackTypeText, trackselection.TrackTypeMetadata:
		return t.String()
	default:
		return "unknown"
	}
}

func normalizeReasonLabel(reason string) string {
	switch trackselection.Reason(reason) {
	case trackselection.ReasonAdaptive, trackselection.ReasonWithinConstraints,
		trackselection.ReasonExceedsConstraints, trackselection.ReasonLanguageDefault,
		trackselection.ReasonLanguage, trackselection.ReasonLanguageForced,
		trackselection.ReasonDefault, trackselection.ReasonForcedAudioMatch,
		trackselection.ReasonForced, trackselection.ReasonFirstSupported,
		trackselection.ReasonOverride:
		return reason
	case "none":
		return reason
	default:
		return "unknown"
	}
}
