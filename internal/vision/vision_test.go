package vision

import (
	"context"
	"encoding/json"
	"testing"
)

func TestParsePayloadFullShape(t *testing.T) {
	raw := json.RawMessage(`{
		"components": {"Nav.jsx": "nav"},
		"styles": {"index.css": "css"},
		"pages": {"main.jsx": "entry"}
	}`)
	p, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if p.Components["Nav.jsx"] != "nav" || p.Styles["index.css"] != "css" || p.Pages["main.jsx"] != "entry" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestParsePayloadDropsMalformedSection(t *testing.T) {
	raw := json.RawMessage(`{
		"components": {"Nav.jsx": 42},
		"pages": {"main.jsx": "entry"}
	}`)
	p, err := parsePayload(raw)
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if p.Components != nil {
		t.Fatalf("malformed components section kept: %+v", p.Components)
	}
	if p.Styles != nil {
		t.Fatalf("absent styles section materialized: %+v", p.Styles)
	}
	if p.Pages["main.jsx"] != "entry" {
		t.Fatalf("pages dropped: %+v", p.Pages)
	}
}

func TestParsePayloadRejectsNonObject(t *testing.T) {
	if _, err := parsePayload(json.RawMessage(`[1,2,3]`)); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
}

func TestCachedClientMemoizesByImageDigest(t *testing.T) {
	fake := NewFakeClient()
	cached, err := NewCachedClient(fake, 8)
	if err != nil {
		t.Fatalf("NewCachedClient() error = %v", err)
	}
	ctx := context.Background()
	img := []byte{0x89, 0x50, 0x4e, 0x47}

	for i := 0; i < 3; i++ {
		desc, err := cached.DescribeImage(ctx, img, "image/png")
		if err != nil {
			t.Fatalf("DescribeImage() error = %v", err)
		}
		if desc != fake.Description {
			t.Fatalf("description = %q", desc)
		}
	}
	if fake.DescribeCalls != 1 {
		t.Fatalf("DescribeCalls = %d, want 1", fake.DescribeCalls)
	}

	// A different image is a different key.
	if _, err := cached.DescribeImage(ctx, []byte("other"), "image/png"); err != nil {
		t.Fatalf("DescribeImage() error = %v", err)
	}
	if fake.DescribeCalls != 2 {
		t.Fatalf("DescribeCalls = %d, want 2", fake.DescribeCalls)
	}
}

func TestCachedClientDoesNotCacheGeneration(t *testing.T) {
	fake := NewFakeClient()
	cached, _ := NewCachedClient(fake, 8)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cached.GenerateProject(ctx, "desc"); err != nil {
			t.Fatalf("GenerateProject() error = %v", err)
		}
	}
	if fake.GenerateCalls != 2 {
		t.Fatalf("GenerateCalls = %d, want 2", fake.GenerateCalls)
	}
}
