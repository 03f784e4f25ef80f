package service

import (
	"strings"
	"testing"
	"time"
)

func TestParseDataURL(t *testing.T) {
	data, mime, err := parseDataURL("data:image/png;base64,cG5nLWJ5dGVz")
	if err != nil {
		t.Fatalf("parseDataURL: %v", err)
	}

	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}

	if string(data) != "png-bytes" {
		t.Errorf("data = %q, want png-bytes", data)
	}

	for _, bad := range []string{"", "not a data url", "data:image/png;base64,!!!", "data:image/png,raw"} {
		if _, _, err := parseDataURL(bad); err == nil {
			t.Errorf("parseDataURL(%q) = nil error, want failure", bad)
		}
	}
}

func TestExtFromMime(t *testing.T) {
	cases := []struct{ mime, want string }{
		{"image/png", "png"},
		{"image/svg+xml", "svg"},
		{"image/jpeg", "jpeg"},
		{"weird", "bin"},
		{"image/", "bin"},
		{"", "bin"},
	}

	for _, tc := range cases {
		if got := extFromMime(tc.mime); got != tc.want {
			t.Errorf("extFromMime(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestCeilMB(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{mbBytes, 1},
		{mbBytes + 1, 2},
		{3 * mbBytes, 3},
	}

	for _, tc := range cases {
		if got := ceilMB(tc.n); got != tc.want {
			t.Errorf("ceilMB(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestNewWorkIDSortable(t *testing.T) {
	earlier := newWorkID(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	later := newWorkID(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	if len(earlier) != 26 || len(later) != 26 {
		t.Fatalf("ulid length = %d/%d, want 26", len(earlier), len(later))
	}

	if !(earlier < later) {
		t.Errorf("ids not time ordered: %s >= %s", earlier, later)
	}
}

func TestMediaObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	key := mediaObjectKey("01HWORK", at, 2, "png")
	if key != "01HWORK/1700000000000-2.png" {
		t.Errorf("key = %q", key)
	}

	if !strings.HasPrefix(key, "01HWORK/") {
		t.Errorf("key must be namespaced under the work id: %q", key)
	}
}
