// Package resolve turns a video page URL into a directly playable stream URL
// by running yt-dlp in simulate mode and reading its info JSON.
package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"

	"github.com/lrstanley/go-ytdlp"

	"ytplay/internal/media"
)

var (
	// ErrResolution is returned when no playable stream URL could be obtained.
	ErrResolution = errors.New("could not retrieve a valid video stream URL")

	// ErrMissingCapability is returned when the yt-dlp executable is unavailable.
	ErrMissingCapability = errors.New("yt-dlp is not available")
)

// Resolver resolves a source reference into a playable stream.
type Resolver interface {
	Resolve(ctx context.Context, source string) (*media.Stream, error)
}

// runFunc runs the extractor for source and returns its raw info JSON.
type runFunc func(ctx context.Context, source string) ([]byte, error)

// YTDLP resolves streams through the yt-dlp executable.
type YTDLP struct {
	format string
	run    runFunc
}

// NewYTDLP creates a resolver that asks yt-dlp for the given format selector
// (e.g. "best"). execPath overrides the yt-dlp binary when non-empty.
func NewYTDLP(format, execPath string) *YTDLP {
	y := &YTDLP{format: format}
	y.run = func(ctx context.Context, source string) ([]byte, error) {
		dl := ytdlp.New().
			Format(y.format).
			Simulate().
			DumpJSON().
			NoPlaylist()
		if execPath != "" {
			dl.SetExecutable(execPath)
		}

		res, err := dl.Run(ctx, source)
		if err != nil {
			return nil, err
		}
		return []byte(res.Stdout), nil
	}
	return y
}

// Resolve implements Resolver.
func (y *YTDLP) Resolve(ctx context.Context, source string) (*media.Stream, error) {
	log.Printf("extracting stream info for %s (format %q)", source, y.format)

	out, err := y.run(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp: %v", ErrResolution, err)
	}

	info, err := parseInfo(out)
	if err != nil {
		return nil, err
	}

	stream, err := SelectStream(info)
	if err != nil {
		return nil, err
	}

	log.Printf("[%s] %s: using format %s (video %s, audio %s)",
		orUnknown(stream.Extractor), orUnknown(stream.Title),
		orUnknown(stream.FormatID), orUnknown(stream.VCodec), orUnknown(stream.ACodec))

	return stream, nil
}

// parseInfo decodes the first JSON document printed by yt-dlp.
func parseInfo(out []byte) (*media.Info, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: extractor returned no info", ErrResolution)
	}

	// --dump-json prints one document per line; a single video yields one.
	if i := bytes.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}

	var info media.Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: decoding extractor info: %v", ErrResolution, err)
	}
	return &info, nil
}

// SelectStream picks the stream to play from extractor info. The top-level
// URL wins when present; otherwise the first format that carries video and
// a URL is used.
func SelectStream(info *media.Info) (*media.Stream, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: extractor returned no info", ErrResolution)
	}

	stream := &media.Stream{
		Title:     info.Title,
		Extractor: info.Extractor,
		Duration:  info.Duration,
	}

	if info.URL != "" {
		stream.URL = info.URL
		stream.FormatID = info.FormatID
		stream.VCodec = info.VCodec
		stream.ACodec = info.ACodec
		return stream, nil
	}

	for _, f := range info.Formats {
		if !f.HasVideo() || f.URL == "" {
			continue
		}
		stream.URL = f.URL
		stream.FormatID = f.FormatID
		stream.VCodec = f.VCodec
		stream.ACodec = f.ACodec
		return stream, nil
	}

	return nil, fmt.Errorf("%w: no format with video among %d candidates", ErrResolution, len(info.Formats))
}

// Ensure checks that yt-dlp can be run. With autoInstall, go-ytdlp downloads
// and caches a release when none is found.
func Ensure(ctx context.Context, execPath string, autoInstall bool) error {
	if execPath == "" && autoInstall {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			return fmt.Errorf("%w: installing yt-dlp: %v", ErrMissingCapability, err)
		}
		return nil
	}

	name := execPath
	if name == "" {
		name = "yt-dlp"
	}
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %q not found in PATH (install it or set auto_install = true)", ErrMissingCapability, name)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
