// Package trackselection decides which renditions each renderer of a player decodes.
//
// A renderer is described by its RendererCapabilities and is offered a TrackGroupSet:
// groups of mutually exclusive Formats of one logical track. A pass maps every renderer to
// a Selection, or to nil when the renderer should be disabled:
//
//   - video: an adaptive set over the first group with at least two eligible tracks, else
//     the highest resolution track within the size and viewport constraints, else (if
//     allowed) the smallest track exceeding them;
//   - audio: preferred language before default flag;
//   - text: preferred text language, then default flag, then forced tracks in the
//     preferred audio language;
//   - anything else: the first default track, else the first handled track.
//
// Preferences live in a Config whose version changes whenever a stored value changes.
// A Tracker uses the version to re-run passes only when needed.
package trackselection
