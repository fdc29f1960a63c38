package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mengelbart/moqtransport"

	"github.com/Eyevinn/moqtracksel/internal"
)

const minGroupInterval = 10 * time.Millisecond

// groupWriter sends payload as the only object of group groupID.
type groupWriter func(groupID uint64, payload []byte) error

func subgroupWriter(w *moqtransport.SubscribeResponseWriter) groupWriter {
	return func(groupID uint64, payload []byte) error {
		sg, err := w.OpenSubgroup(groupID, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to open subgroup: %w", err)
		}
		if _, err := sg.WriteObject(0, payload); err != nil {
			sg.Close()
			return fmt.Errorf("failed to write object: %w", err)
		}
		return sg.Close()
	}
}

// publishFragments sends one fragment per group, paced by the fragment duration, and
// starts over after the last fragment. Fragments are sent as stored, so decode times
// restart on every loop. It returns nil when ctx is done and the error of a failed write.
func publishFragments(ctx context.Context, fragments []internal.Fragment, write groupWriter, logger *slog.Logger) error {
	if len(fragments) == 0 {
		return nil
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for groupID := uint64(0); ; groupID++ {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		frag := fragments[groupID%uint64(len(fragments))]
		if err := write(groupID, frag.Data); err != nil {
			return fmt.Errorf("group %d: %w", groupID, err)
		}
		logger.Debug("published group", "groupID", groupID, "size", len(frag.Data))
		timer.Reset(max(frag.Duration, minGroupInterval))
	}
}
