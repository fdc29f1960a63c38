package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mengelbart/moqtransport"
	"github.com/mengelbart/qlog"
	"github.com/mengelbart/qlog/moqt"

	"github.com/Eyevinn/moqtracksel/internal"
)

const catalogTrack = "catalog"

// subscribeFunc opens a subscription to a track in the handler's namespace. media is set
// for video, audio and text tracks, which start at the next group.
type subscribeFunc func(ctx context.Context, name string, media bool) (objectSource, error)

type moqHandler struct {
	namespace []string
	outDir    string
	engine    *engine
	logger    *slog.Logger

	subscribe subscribeFunc
	groups    *internal.TrackGroups
	// subs holds the active subscription per renderer, nil if disabled.
	subs []*trackSubscription
}

func (h *moqHandler) run(ctx context.Context, conn moqtransport.Connection, qlogOut io.Writer, reload <-chan os.Signal) error {
	session := &moqtransport.Session{
		Handler:             h.getHandler(),
		InitialMaxRequestID: 100,
	}
	if qlogOut != nil {
		session.Qlogger = qlog.NewQLOGHandler(qlogOut, "MoQ QLOG", "MoQ QLOG",
			conn.Perspective().String(), moqt.Schema)
	}
	if err := session.Run(conn); err != nil {
		h.logger.Error("MoQ Session initialization failed", "error", err)
		if cerr := conn.CloseWithError(0, "session initialization error"); cerr != nil {
			h.logger.Error("failed to close connection", "error", cerr)
		}
		return fmt.Errorf("session initialization failed: %w", err)
	}
	defer func() {
		if err := conn.CloseWithError(0, "subscriber done"); err != nil {
			h.logger.Debug("failed to close connection", "error", err)
		}
	}()
	h.subscribe = func(ctx context.Context, name string, media bool) (objectSource, error) {
		opts := moqtransport.DefaultSubscribeOptions()
		if media {
			opts.FilterType = moqtransport.FilterTypeNextGroupStart
		}
		rt, err := session.SubscribeWithOptions(ctx, h.namespace, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to track %s: %w", name, err)
		}
		return &remoteTrack{rt: rt}, nil
	}

	cat, err := h.fetchCatalog(ctx)
	if err != nil {
		return err
	}
	return h.loop(ctx, cat, reload)
}

func (h *moqHandler) getHandler() moqtransport.Handler {
	return moqtransport.HandlerFunc(func(w moqtransport.ResponseWriter, r *moqtransport.Message) {
		switch r.Method {
		case moqtransport.MessageAnnounce:
			if !tupleEqual(r.Namespace, h.namespace) {
				h.logger.Warn("got unexpected announcement", "namespace", r.Namespace, "expected", h.namespace)
				if err := w.Reject(0, "non-matching namespace"); err != nil {
					h.logger.Error("failed to reject announcement", "error", err)
				}
				return
			}
			if err := w.Accept(); err != nil {
				h.logger.Error("failed to accept announcement", "error", err)
			}
		}
	})
}

// fetchCatalog reads one catalog object.
func (h *moqHandler) fetchCatalog(ctx context.Context) (*internal.Catalog, error) {
	src, err := h.subscribe(ctx, catalogTrack, false)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	o, err := src.next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}
	h.logger.Info("catalog object received",
		"groupID", o.GroupID,
		"objectID", o.ObjectID,
		"payloadSize", len(o.Payload))
	return internal.ParseCatalog(o.Payload)
}

// loop selects tracks for cat and re-selects on every reload signal until ctx is done.
func (h *moqHandler) loop(ctx context.Context, cat *internal.Catalog, reload <-chan os.Signal) error {
	defer h.closeAll()
	if err := h.useCatalog(ctx, cat); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("session ended", "reason", ctx.Err())
			return nil
		case <-reload:
			h.logger.Info("reloading preferences")
			if err := h.engine.loadPreferences(); err != nil {
				h.logger.Error("failed to reload preferences", "error", err)
				continue
			}
			if err := h.reselect(ctx); err != nil {
				h.logger.Error("re-selection failed", "error", err)
			}
		}
	}
}

// useCatalog rebuilds the track groups and forces a new selection pass.
func (h *moqHandler) useCatalog(ctx context.Context, cat *internal.Catalog) error {
	groups, err := internal.BuildTrackGroups(cat)
	if err != nil {
		return fmt.Errorf("could not build track groups: %w", err)
	}
	h.groups = groups
	h.logger.Info("catalog parsed", "tracks", len(cat.Tracks), "groups", groups)
	h.engine.cfg.Invalidate()
	return h.reselect(ctx)
}

func tupleEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, t := range a {
		if t != b[i] {
			return false
		}
	}
	return true
}
