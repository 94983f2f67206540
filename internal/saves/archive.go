package saves

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
)

const archiveVersion = 1

// maxArchiveSize bounds the decompressed size of an imported archive.
const maxArchiveSize = 4 << 20

var ErrInvalidArchive = errors.New("invalid save archive")

type ArchiveHeader struct {
	Version    int       `json:"version"`
	SaveID     string    `json:"saveId"`
	ExportedAt time.Time `json:"exportedAt"`
}

// writeArchive encodes a header line followed by the save, zstd compressed.
func writeArchive(h ArchiveHeader, save SaveData) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	hb, _ := json.Marshal(h)
	if _, err := enc.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return nil, err
	}
	if err := json.NewEncoder(enc).Encode(save); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encode save: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readArchive(data []byte) (ArchiveHeader, SaveData, error) {
	var h ArchiveHeader
	var save SaveData

	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return h, save, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer dec.Close()

	br := bufio.NewReader(io.LimitReader(dec, maxArchiveSize))
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, save, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, save, fmt.Errorf("%w: header: %v", ErrInvalidArchive, err)
	}
	if h.Version != archiveVersion {
		return h, save, fmt.Errorf("%w: unsupported version %d", ErrInvalidArchive, h.Version)
	}
	if err := json.NewDecoder(br).Decode(&save); err != nil {
		return h, save, fmt.Errorf("%w: body: %v", ErrInvalidArchive, err)
	}
	return h, save, nil
}
