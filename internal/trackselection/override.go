package trackselection

import "log/slog"

// applyOverride forces the group and track of sel according to o.
//
// The track index is replaced without checking it against the group, so an out-of-range
// override surfaces downstream when the selection is used. An out-of-range group index
// falls back to group 0. An override turns an adaptive selection into a fixed one.
func applyOverride(sel *Selection, groups TrackGroupSet, o Override, category TrackType, logger *slog.Logger) *Selection {
	if sel == nil || !o.IsSet() {
		return sel
	}
	groupIndex := sel.GroupIndex
	track := sel.Track()
	if o.Track != NoOverride {
		logger.Debug("applying track override",
			"trackType", category,
			"track", o.Track,
			"strategyTrack", track)
		track = o.Track
	}
	if o.Group != NoOverride {
		if o.Group >= 0 && o.Group < groups.Len() {
			groupIndex = o.Group
		} else {
			logger.Warn("group override out of range, using group 0",
				"trackType", category,
				"group", o.Group,
				"groups", groups.Len())
			groupIndex = 0
		}
	}
	return NewFixedSelection(groups.Get(groupIndex), groupIndex, track, ReasonOverride)
}
