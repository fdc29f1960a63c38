package main

import (
	"github.com/Eyevinn/moqtracksel/internal"
	"github.com/Eyevinn/moqtracksel/internal/trackselection"
)

type rendererReport struct {
	TrackType string   `json:"trackType"`
	Enabled   bool     `json:"enabled"`
	Adaptive  bool     `json:"adaptive,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Group     string   `json:"group,omitempty"`
	Tracks    []string `json:"tracks,omitempty"`
	// Start is the track a subscription begins with.
	Start string `json:"start,omitempty"`
}

type selectionReport struct {
	ConfigVersion uint64           `json:"configVersion"`
	Renderers     []rendererReport `json:"renderers"`
}

func buildReport(renderers []*internal.CodecCapabilities, groups *internal.TrackGroups,
	sels []*trackselection.Selection, version uint64) (selectionReport, error) {
	report := selectionReport{
		ConfigVersion: version,
		Renderers:     make([]rendererReport, len(sels)),
	}
	for i, sel := range sels {
		rr := rendererReport{TrackType: renderers[i].Type.String()}
		if sel != nil {
			tracks, err := groups.Lookup(sel)
			if err != nil {
				return report, err
			}
			rr.Enabled = true
			rr.Adaptive = sel.Adaptive
			rr.Reason = string(sel.Reason)
			rr.Group = sel.Group.ID
			for _, t := range tracks {
				rr.Tracks = append(rr.Tracks, t.Name)
			}
			rr.Start = startTrack(tracks).Name
		}
		report.Renderers[i] = rr
	}
	return report, nil
}

// startTrack returns the track to subscribe to first: the lowest known bitrate of an
// adaptive set, or the only track of a fixed selection.
func startTrack(tracks []internal.Track) internal.Track {
	best := tracks[0]
	for _, t := range tracks[1:] {
		if t.Bitrate == nil {
			continue
		}
		if best.Bitrate == nil || *t.Bitrate < *best.Bitrate {
			best = t
		}
	}
	return best
}
