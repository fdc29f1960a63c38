package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/require"
)

// aacLC48kStereo is the AudioSpecificConfig of AAC-LC, 48kHz, 2 channels.
var aacLC48kStereo = []byte{0x11, 0x90}

func newVideoInit(width, height uint16, lang string) *mp4.InitSegment {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(90000, "video", lang)
	vse := mp4.CreateVisualSampleEntryBox("avc1", width, height, &mp4.PaspBox{HSpacing: 1, VSpacing: 1})
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(vse)
	return init
}

func newAudioInit(lang string) *mp4.InitSegment {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", lang)
	esds := mp4.CreateEsdsBox(aacLC48kStereo)
	mp4a := mp4.CreateAudioSampleEntryBox("mp4a", 2, 16, 48000, esds)
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4a)
	return init
}

func initData(t *testing.T, init *mp4.InitSegment) string {
	t.Helper()
	s, err := EncodeInitData(init)
	require.NoError(t, err)
	return s
}

func writeInit(t *testing.T, dir, name string, init *mp4.InitSegment) {
	t.Helper()
	fh, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer fh.Close()
	require.NoError(t, init.Encode(fh))
}
