package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// TargetRate is the sample rate the transcriber expects.
const TargetRate = 16000

// Clip is decoded audio exactly as the container stored it:
// interleaved float32 samples in [-1, 1].
type Clip struct {
	Samples  []float32
	Rate     int
	Channels int
}

// DecodeFile reads a wav/mp3/ogg-vorbis/ogg-opus file. The extension
// picks the decoder; unknown extensions fall back to sniffing the
// leading container magic.
func DecodeFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg", ".oga", ".opus":
		return decodeOgg(f)
	}

	magic, _ := bufio.NewReader(f).Peek(4)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Clip{}, err
	}

	switch string(magic) {
	case "RIFF":
		return decodeWAV(f)
	case "OggS":
		return decodeOgg(f)
	}

	return Clip{}, fmt.Errorf("unsupported audio format: %q", filepath.Ext(path))
}

// Mono16k collapses the clip to one channel at TargetRate, capped at
// maxSamples when maxSamples > 0.
func (c Clip) Mono16k(maxSamples int) []float32 {
	x := c.Samples
	if c.Channels > 1 {
		x = downmix(x, c.Channels)
	}
	if c.Rate != TargetRate && c.Rate > 0 {
		x = resample(x, c.Rate, TargetRate)
	}
	if maxSamples > 0 && len(x) > maxSamples {
		x = x[:maxSamples]
	}
	return x
}

func decodeWAV(r io.ReadSeeker) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, errors.New("not a wav file")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("read wav: %w", err)
	}
	if pb == nil || len(pb.Data) == 0 {
		return Clip{}, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	clip := Clip{
		Samples:  pcmToFloat(pb.Data, depth),
		Rate:     44100,
		Channels: 1,
	}
	if pb.Format != nil {
		if pb.Format.SampleRate > 0 {
			clip.Rate = pb.Format.SampleRate
		}
		if pb.Format.NumChannels > 0 {
			clip.Channels = pb.Format.NumChannels
		}
	}

	return clip, nil
}

func decodeMP3(r io.Reader) (Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Clip{}, fmt.Errorf("open mp3: %w", err)
	}

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return Clip{}, fmt.Errorf("read mp3: %w", err)
	}

	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return Clip{}, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}

	// go-mp3 always emits interleaved stereo.
	return Clip{Samples: pcm16ToFloat(ints), Rate: rate, Channels: 2}, nil
}

// decodeOgg tries Vorbis first, then Opus; both live in the same
// container so the extension alone cannot tell them apart.
func decodeOgg(f *os.File) (Clip, error) {
	clip, verr := decodeVorbis(f)
	if verr == nil {
		return clip, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Clip{}, err
	}

	clip, oerr := decodeOpus(f)
	if oerr == nil {
		return clip, nil
	}

	return Clip{}, fmt.Errorf("decode ogg: vorbis: %v; opus: %v", verr, oerr)
}

func decodeVorbis(r io.Reader) (Clip, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return Clip{}, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return Clip{}, errors.New("invalid vorbis stream")
	}

	return Clip{Samples: pcm, Rate: format.SampleRate, Channels: format.Channels}, nil
}

func decodeOpus(rs io.ReadSeeker) (Clip, error) {
	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return Clip{}, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// Opus always decodes at 48 kHz; read ~0.5s per chunk.
	var samples []float32
	buf := make([]int16, 48000*ch/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			samples = append(samples, pcm16ToFloat(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Clip{}, err
		}
	}

	if len(samples) == 0 {
		return Clip{}, errors.New("empty opus stream")
	}

	return Clip{Samples: samples, Rate: 48000, Channels: ch}, nil
}

func pcmToFloat(data []int, bitDepth int) []float32 {
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	out := make([]float32, len(data))
	for i, v := range data {
		x := float64(v) * scale
		if x > 1 {
			x = 1
		}
		if x < -1 {
			x = -1
		}
		out[i] = float32(x)
	}
	return out
}

func pcm16ToFloat(data []int16) []float32 {
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / 32768
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}

	ratio := float64(to) / float64(from)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := range out {
		src := float64(i) / ratio
		lo := int(src)
		if lo >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(src - float64(lo))
		out[i] = in[lo]*(1-frac) + in[lo+1]*frac
	}
	return out
}
