package report

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Sink stores a finished report.
type Sink interface {
	Write(header, body string) error
}

var compressEncoder, _ = zstd.NewWriter(nil)

var compressDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

// Compress zstd-encodes a rendered report.
func Compress(src []byte) []byte {
	return compressEncoder.EncodeAll(src, make([]byte, 0, len(src)))
}

// Decompress reverses Compress.
func Decompress(src []byte) ([]byte, error) {
	return compressDecoder.DecodeAll(src, nil)
}

// Digest returns the hex BLAKE3 sum of data.
func Digest(data []byte) string {
	h := blake3.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FileSink writes a report to Path. With Compress set the file is zstd
// encoded and ".zst" is appended to the name. With Digest set a
// "<file>.b3" sidecar holding the BLAKE3 sum of the written bytes is
// created next to it.
type FileSink struct {
	Path     string
	Compress bool
	Digest   bool
	Perm     os.FileMode
}

// Target returns the file name the report will be written to.
func (s *FileSink) Target() string {
	if s.Compress && !strings.HasSuffix(s.Path, ".zst") {
		return s.Path + ".zst"
	}
	return s.Path
}

func (s *FileSink) Write(header, body string) error {
	if s.Path == "" {
		return fmt.Errorf("report: no output path")
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	data := Document(header, body)
	if s.Compress {
		data = Compress(data)
	}
	target := s.Target()
	if err := os.WriteFile(target, data, perm); err != nil {
		return fmt.Errorf("report: write %s: %w", target, err)
	}
	if s.Digest {
		sum := Digest(data) + "  " + target + "\n"
		if err := os.WriteFile(target+".b3", []byte(sum), perm); err != nil {
			return fmt.Errorf("report: write digest: %w", err)
		}
	}
	return nil
}

// MemorySink keeps reports in memory.
type MemorySink struct {
	mu      sync.Mutex
	Reports []string
}

func (s *MemorySink) Write(header, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reports = append(s.Reports, string(Document(header, body)))
	return nil
}

// Last returns the most recent report.
func (s *MemorySink) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Reports) == 0 {
		return ""
	}
	return s.Reports[len(s.Reports)-1]
}
