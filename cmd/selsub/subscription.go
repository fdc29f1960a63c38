package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/mengelbart/moqtransport"

	"github.com/Eyevinn/moqtracksel/internal"
)

type mediaObject struct {
	GroupID  uint64
	ObjectID uint64
	Payload  []byte
}

// objectSource delivers the objects of one subscribed track.
type objectSource interface {
	next(ctx context.Context) (mediaObject, error)
	Close() error
}

type remoteTrack struct {
	rt *moqtransport.RemoteTrack
}

func (r *remoteTrack) next(ctx context.Context) (mediaObject, error) {
	o, err := r.rt.ReadObject(ctx)
	if err != nil {
		return mediaObject{}, err
	}
	return mediaObject{GroupID: o.GroupID, ObjectID: o.ObjectID, Payload: o.Payload}, nil
}

func (r *remoteTrack) Close() error {
	return r.rt.Close()
}

// trackSubscription copies the objects of one track into a file.
type trackSubscription struct {
	name    string
	src     objectSource
	out     *os.File
	cancel  context.CancelFunc
	done    chan struct{}
	logger  *slog.Logger
	objects atomic.Uint64
}

func (h *moqHandler) openSubscription(ctx context.Context, track internal.Track) (*trackSubscription, error) {
	out, err := openTrackOutput(h.outDir, track)
	if err != nil {
		return nil, err
	}
	src, err := h.subscribe(ctx, track.Name, true)
	if err != nil {
		out.Close()
		return nil, err
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &trackSubscription{
		name:   track.Name,
		src:    src,
		out:    out,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: h.logger.With("track", track.Name),
	}
	go s.read(subCtx)
	return s, nil
}

// openTrackOutput opens <dir>/<track>.mp4 for appending. The init segment is written
// when the file is new, so switching back to a track continues the same file.
func openTrackOutput(dir string, track internal.Track) (*os.File, error) {
	path := filepath.Join(dir, track.Name+".mp4")
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open output for track %s: %w", track.Name, err)
	}
	st, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, err
	}
	if st.Size() == 0 && track.InitData != "" {
		initBytes, err := base64.StdEncoding.DecodeString(track.InitData)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("could not decode init data of track %s: %w", track.Name, err)
		}
		if _, err := fh.Write(initBytes); err != nil {
			fh.Close()
			return nil, err
		}
	}
	return fh, nil
}

func (s *trackSubscription) read(ctx context.Context) {
	defer close(s.done)
	for {
		o, err := s.src.next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				s.logger.Warn("error reading object", "error", err)
			}
			return
		}
		s.logger.Debug("got object",
			"groupID", o.GroupID,
			"objectID", o.ObjectID,
			"size", len(o.Payload))
		if _, err := s.out.Write(o.Payload); err != nil {
			s.logger.Error("failed to write object", "error", err)
			return
		}
		s.objects.Add(1)
	}
}

// close ends the subscription and waits for the reader to stop.
func (s *trackSubscription) close() error {
	s.cancel()
	err := s.src.Close()
	<-s.done
	s.logger.Info("subscription closed", "objects", s.objects.Load())
	return errors.Join(err, s.out.Close())
}

func (h *moqHandler) closeAll() {
	for i, s := range h.subs {
		if s == nil {
			continue
		}
		if err := s.close(); err != nil {
			h.logger.Warn("failed to close subscription", "track", s.name, "error", err)
		}
		h.subs[i] = nil
	}
}
