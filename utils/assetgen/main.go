// assetgen generates a test asset for selpub with ffmpeg: a ladder of video renditions at
// different resolutions and one audio track per language.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/moqtracksel/internal"
)

const (
	frameRate       = 25
	audioSampleRate = 48000
	audioBitrate    = 128 // kbps
	// Every frame is a fragment, so each MoQ group carries one frame.
	movFlags = "cmaf+separate_moof+delay_moov+skip_trailer+frag_every_frame"
)

type rendition struct {
	width, height int
	bitrate       int // kbps
}

var ladder = []rendition{
	{640, 360, 400},
	{1280, 720, 1200},
	{1920, 1080, 3000},
}

// toneForLanguage gives each audio language its own beep frequency.
var toneForLanguage = map[string]int{
	"en": 880,
	"sv": 660,
	"fr": 440,
	"de": 550,
}

type options struct {
	outDir    string
	duration  int
	languages string
	ffmpeg    string
	logLevel  string
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	opts := options{}
	fs.StringVar(&opts.outDir, "out", "content", "Output directory")
	fs.IntVar(&opts.duration, "duration", 10, "Duration in seconds")
	fs.StringVar(&opts.languages, "langs", "en,sv,fr", "Comma-separated audio languages")
	fs.StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	fs.StringVar(&opts.logLevel, "loglevel", "info", "Log level: debug, info, warning, error")
	err := fs.Parse(args[1:])
	return &opts, err
}

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("assetgen", flag.ContinueOnError)
	opts, err := parseOptions(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := internal.NewLogger(os.Stderr, opts.logLevel)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, r := range ladder {
		out := filepath.Join(opts.outDir, fmt.Sprintf("video_%dp.mp4", r.height))
		if err := runFFmpeg(logger, opts.ffmpeg, videoArgs(r, opts.duration, out)); err != nil {
			return fmt.Errorf("failed to generate %s: %w", out, err)
		}
	}
	for _, lang := range strings.Split(opts.languages, ",") {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		out := filepath.Join(opts.outDir, fmt.Sprintf("audio_%s.mp4", lang))
		if err := runFFmpeg(logger, opts.ffmpeg, audioArgs(lang, opts.duration, out)); err != nil {
			return fmt.Errorf("failed to generate %s: %w", out, err)
		}
	}

	asset, err := internal.LoadAsset(opts.outDir)
	if err != nil {
		return fmt.Errorf("generated asset does not load: %w", err)
	}
	printAsset(stdout, asset)
	return nil
}

func videoArgs(r rendition, duration int, outputFile string) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("testsrc=size=%dx%d:rate=%d:duration=%d:decimals=3", r.width, r.height, frameRate, duration),
		"-vf", fmt.Sprintf("drawtext=text='%dp %d kbps':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.5:x=20:y=20",
			r.height, r.bitrate, r.height/20),
		"-c:v", "libx264",
		"-b:v", fmt.Sprintf("%dk", r.bitrate),
		"-preset", "medium",
		"-profile:v", "main",
		"-x264opts", fmt.Sprintf("keyint=%d:min-keyint=%d:scenecut=0:bframes=0:force-cfr=1", frameRate, frameRate),
		"-pix_fmt", "yuv420p",
		"-an",
		"-movflags", movFlags,
		outputFile,
	}
}

func audioArgs(lang string, duration int, outputFile string) []string {
	tone, ok := toneForLanguage[lang]
	if !ok {
		tone = 1000
	}
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("sine=frequency=1:beep_factor=%d:sample_rate=%d", tone, audioSampleRate),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", audioBitrate),
		"-ar", fmt.Sprintf("%d", audioSampleRate),
		"-ac", "2",
		"-metadata:s:a:0", "language=" + lang,
		"-t", fmt.Sprintf("%d", duration),
		"-movflags", movFlags,
		outputFile,
	}
}

func runFFmpeg(logger *slog.Logger, ffmpeg string, args []string) error {
	logger.Info("running ffmpeg", "cmd", ffmpeg+" "+strings.Join(args, " "))
	cmd := exec.Command(ffmpeg, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Error("ffmpeg failed", "output", string(out))
		return err
	}
	logger.Debug("ffmpeg done", "output", string(out))
	return nil
}

func printAsset(w io.Writer, asset *internal.Asset) {
	fmt.Fprintf(w, "asset %s\n", asset.Name)
	for _, group := range asset.Groups {
		for _, ct := range group.Tracks {
			fmt.Fprintf(w, "  altGroup %d  %-14s %-14s", group.AltGroupID, ct.Name, ct.Info.Codec)
			if ct.Info.Width > 0 {
				fmt.Fprintf(w, " %dx%d", ct.Info.Width, ct.Info.Height)
			}
			if ct.Info.Language != "" {
				fmt.Fprintf(w, " lang=%s", ct.Info.Language)
			}
			fmt.Fprintf(w, " %.0f kbps\n", float64(ct.SampleBitrate)/1000)
		}
	}
}
