package ingest

import (
	"math"
	"strings"
	"testing"
)

func TestRead_TimestampAliases(t *testing.T) {
	const dump = `{
		"header": {"map_name": "DFH Stadium", "team_size": 1},
		"frames": [
			{"timestamp": 1.5, "ball": {}, "players": []},
			{"time": 2.5, "ball": {}, "players": []},
			{"ball": {}, "players": []}
		]
	}`

	raw, err := Read(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Header.MapName != "DFH Stadium" {
		t.Errorf("map name = %q", raw.Header.MapName)
	}
	if len(raw.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(raw.Frames))
	}
	if raw.Frames[0].TimeS != 1.5 {
		t.Errorf("frame 0 time = %v, want 1.5 (timestamp key)", raw.Frames[0].TimeS)
	}
	if raw.Frames[1].TimeS != 2.5 {
		t.Errorf("frame 1 time = %v, want 2.5 (time key)", raw.Frames[1].TimeS)
	}
	if !math.IsNaN(raw.Frames[2].TimeS) {
		t.Errorf("frame 2 time = %v, want NaN for missing timestamp", raw.Frames[2].TimeS)
	}
}

func TestRead_HashIsContentAddressed(t *testing.T) {
	const dump = `{"header": {}, "frames": []}`

	a, err := Read(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Read(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Hash != b.Hash {
		t.Error("identical content must hash identically")
	}
	if len(a.Hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a.Hash))
	}

	c, err := Read(strings.NewReader(dump + " "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hash == a.Hash {
		t.Error("different content must hash differently")
	}
}

func TestRead_MalformedJSON(t *testing.T) {
	if _, err := Read(strings.NewReader("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
