// Package mp4video provides the decoding MediaSource: MP4 container
// probing via mp4ff and per-frame pixel decoding via an external ffmpeg
// process.
package mp4video

import (
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Info describes the video track of an MP4 container.
type Info struct {
	FrameCount int
	Width      int
	Height     int
}

// Probe parses the MP4 structure at path and returns the video track
// info. No pixel data is decoded.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return probeFragmented(mp4File)
	}
	return probeProgressive(mp4File)
}

func probeProgressive(mp4File *mp4.File) (Info, error) {
	if mp4File.Moov == nil {
		return Info{}, fmt.Errorf("no moov box")
	}
	for _, trak := range mp4File.Moov.Traks {
		if !isVideoTrack(trak) {
			continue
		}
		info := Info{
			Width:  int(trak.Tkhd.Width >> 16),
			Height: int(trak.Tkhd.Height >> 16),
		}
		if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsz != nil {
			info.FrameCount = int(trak.Mdia.Minf.Stbl.Stsz.SampleNumber)
		}
		return info, nil
	}
	return Info{}, fmt.Errorf("no video track found")
}

func probeFragmented(mp4File *mp4.File) (Info, error) {
	var videoTrackID uint32
	var trex *mp4.TrexBox
	info := Info{}

	if mp4File.Init != nil && mp4File.Init.Moov != nil {
		for _, trak := range mp4File.Init.Moov.Traks {
			if isVideoTrack(trak) {
				videoTrackID = trak.Tkhd.TrackID
				info.Width = int(trak.Tkhd.Width >> 16)
				info.Height = int(trak.Tkhd.Height >> 16)
				break
			}
		}
		if mp4File.Init.Moov.Mvex != nil {
			for _, t := range mp4File.Init.Moov.Mvex.Trexs {
				if t.TrackID == videoTrackID {
					trex = t
					break
				}
			}
		}
	}
	if videoTrackID == 0 {
		return Info{}, fmt.Errorf("no video track found")
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != videoTrackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return Info{}, fmt.Errorf("get samples: %w", err)
				}
				info.FrameCount += len(samples)
			}
		}
	}
	return info, nil
}

func isVideoTrack(trak *mp4.TrakBox) bool {
	return trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide"
}

// Prober implements ports.MediaProber by probing the MP4 structure.
// A member is media when it parses as MP4 and carries a video track.
type Prober struct{}

// NewProber creates a new structure-based prober.
func NewProber() *Prober {
	return &Prober{}
}

// IsMedia reports whether the file at path is a decodable video container.
func (p *Prober) IsMedia(path string) bool {
	_, err := Probe(path)
	return err == nil
}
