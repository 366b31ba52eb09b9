package editor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/example/sketchpad/internal/clipboard"
)

// MaxFetchBytes bounds how much data a load source may return.
const MaxFetchBytes = 64 << 20

// Source is an addressable image resource for LoadImage.
type Source interface {
	fmt.Stringer
	// Fetch returns the encoded image data. client is used by network
	// sources.
	Fetch(ctx context.Context, client *http.Client) ([]byte, error)
}

type bytesSource struct {
	name string
	data []byte
}

// Bytes wraps already-encoded image data. name is only used in errors.
func Bytes(name string, data []byte) Source {
	if name == "" {
		name = "bytes"
	}
	return bytesSource{name: name, data: data}
}

func (b bytesSource) String() string { return b.name }

func (b bytesSource) Fetch(ctx context.Context, _ *http.Client) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b.data) == 0 {
		return nil, errors.New("empty image data")
	}
	return b.data, nil
}

type fileSource string

// File reads an image from the local filesystem.
func File(path string) Source { return fileSource(path) }

func (f fileSource) String() string { return string(f) }

func (f fileSource) Fetch(ctx context.Context, _ *http.Client) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return readLimited(fh)
}

type urlSource string

// URL fetches an http, https or data URL.
func URL(u string) Source { return urlSource(u) }

func (u urlSource) String() string {
	s := string(u)
	if strings.HasPrefix(s, "data:") && len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

func (u urlSource) Fetch(ctx context.Context, client *http.Client) ([]byte, error) {
	s := string(u)
	if strings.HasPrefix(s, "data:") {
		return decodeDataURL(s)
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body)
}

type clipboardSource struct{}

// Clipboard reads PNG image data from the desktop clipboard.
func Clipboard() Source { return clipboardSource{} }

func (clipboardSource) String() string { return "clipboard" }

func (clipboardSource) Fetch(ctx context.Context, _ *http.Client) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clipboard.ReadImageData()
}

// ParseSource interprets a command-line style source: "clipboard", a data,
// http or https URL, a file:// URL or a plain path.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, errors.New("empty image source")
	case s == "clipboard":
		return Clipboard(), nil
	case strings.HasPrefix(s, "data:"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return URL(s), nil
	case strings.HasPrefix(s, "file://"):
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		return File(u.Path), nil
	}
	return File(s), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFetchBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFetchBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxFetchBytes)
	}
	return data, nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("data URL: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return []byte(text), nil
}
