package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Eyevinn/moqtracksel/internal"
)

// runOffline selects tracks from a local catalog and prints the result.
func runOffline(opts *options, eng *engine, stdout io.Writer) error {
	cat, err := loadOfflineCatalog(opts)
	if err != nil {
		return err
	}
	groups, err := internal.BuildTrackGroups(cat)
	if err != nil {
		return fmt.Errorf("could not build track groups: %w", err)
	}
	eng.logger.Debug("track groups", "groups", groups)
	sels, _, err := eng.selectFor(groups)
	if err != nil {
		return fmt.Errorf("track selection failed: %w", err)
	}
	report, err := buildReport(eng.renderers, groups, sels, eng.cfg.Version())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func loadOfflineCatalog(opts *options) (*internal.Catalog, error) {
	if opts.catalog != "" {
		data, err := os.ReadFile(opts.catalog)
		if err != nil {
			return nil, fmt.Errorf("could not read catalog: %w", err)
		}
		return internal.ParseCatalog(data)
	}
	asset, err := internal.LoadAsset(opts.asset)
	if err != nil {
		return nil, fmt.Errorf("could not load asset: %w", err)
	}
	if err := asset.AddSubtitleTracks(splitList(opts.wvttLangs), splitList(opts.stppLangs)); err != nil {
		return nil, err
	}
	asset.MainLanguage = opts.mainLang
	asset.ForcedSubtitleLanguages = splitList(opts.forcedLangs)
	return asset.GenCatalog(opts.namespace)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
