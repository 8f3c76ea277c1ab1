// Package ingest is the boundary to the external replay parser: it decodes
// a JSON frame dump (header + raw per-frame records) and hashes the file so
// repeated analyses of the same replay are idempotent.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rlstats/go-rl-metrics/internal/model"
)

// wireFrame tolerates both "timestamp" and "time" keys; everything else is
// resolved by the normalizer's coordinate adapter.
type wireFrame struct {
	Timestamp *float64          `json:"timestamp"`
	Time      *float64          `json:"time"`
	Ball      model.RawBall     `json:"ball"`
	Players   []model.RawPlayer `json:"players"`
}

type wireDump struct {
	Header model.Header `json:"header"`
	Frames []wireFrame  `json:"frames"`
}

// Load reads and decodes the frame dump at path.
func Load(path string) (*model.RawReplay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a frame dump from r, hashing the full content for the
// idempotency key.
func Read(r io.Reader) (*model.RawReplay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	h := sha256.Sum256(data)

	var dump wireDump
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&dump); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}

	raw := &model.RawReplay{
		Hash:   fmt.Sprintf("%x", h),
		Header: dump.Header,
		Frames: make([]model.RawFrame, 0, len(dump.Frames)),
	}
	for _, wf := range dump.Frames {
		t := math.NaN()
		switch {
		case wf.Timestamp != nil:
			t = *wf.Timestamp
		case wf.Time != nil:
			t = *wf.Time
		}
		raw.Frames = append(raw.Frames, model.RawFrame{
			TimeS:   t,
			Ball:    wf.Ball,
			Players: wf.Players,
		})
	}
	return raw, nil
}
