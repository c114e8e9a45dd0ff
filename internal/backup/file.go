package backup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compressed reports whether path names a zstd snapshot.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

func WriteFile(path string, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := write(f, data, Compressed(path)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func write(w io.Writer, data []byte, compress bool) error {
	if !compress {
		_, err := w.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	if _, err := bw.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if Compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return Snapshot{}, fmt.Errorf("opening %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data)
}
