// Package imageintake validates dropped or pasted images and encodes them
// into the self-contained data URLs stored on elements.
package imageintake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
)

// MaxImageBytes is the largest image accepted (5 MiB).
const MaxImageBytes = 5 * 1024 * 1024

var (
	ErrImageTooLarge = errors.New("image is too large: the limit is 5 MB")
	ErrNotImage      = errors.New("file is not an image")
	ErrBadDataURL    = errors.New("malformed data URL")
)

// Check rejects sizes over MaxImageBytes.
func Check(size int64) error {
	if size > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// Encode reads an image from r and returns it as a base64 data URL. The
// MIME type is sniffed from the content.
func Encode(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := Check(int64(len(data))); err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL splits a base64 data URL into its MIME type and bytes and
// applies the same checks as Encode.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrBadDataURL
	}
	// Base64 inflates by 4/3; reject before decoding anything huge.
	if err := Check(int64(base64.StdEncoding.DecodedLen(len(encoded))) - 2); err != nil {
		return "", nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	if err := Check(int64(len(data))); err != nil {
		return "", nil, err
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, ErrNotImage
	}
	return mime, data, nil
}

// Intake encodes accepted images off the caller's goroutine. The size
// check runs synchronously so an oversized file is rejected before anything
// happens.
type Intake struct {
	wg sync.WaitGroup
}

// Opener opens the image content once the size check has passed.
type Opener func() (io.ReadCloser, error)

// Submit validates size and, if accepted, encodes the image in the
// background and calls done with the result.
func (in *Intake) Submit(size int64, open Opener, done func(dataURL string, err error)) error {
	if err := Check(size); err != nil {
		return err
	}
	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		rc, err := open()
		if err != nil {
			done("", fmt.Errorf("open image: %w", err))
			return
		}
		defer rc.Close()
		done(Encode(rc))
	}()
	return nil
}

// SubmitFile is Submit for a file on disk.
func (in *Intake) SubmitFile(path string, done func(dataURL string, err error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return ErrNotImage
	}
	return in.Submit(info.Size(), func() (io.ReadCloser, error) { return os.Open(path) }, done)
}

// Wait blocks until every submitted encode has called done.
func (in *Intake) Wait() {
	in.wg.Wait()
}
