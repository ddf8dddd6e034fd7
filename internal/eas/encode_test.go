package eas

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func TestEncodePayloadLayout(t *testing.T) {
	payload, err := EncodePayload(400, []uint8{5, 4, 3, 4, 4}, "discord:77:555", "mvp_pilot_v1")
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if len(payload)%32 != 0 {
		t.Fatalf("payload length %d is not word-aligned", len(payload))
	}

	// Head: four 32-byte slots (scaledScore, then offsets of the three
	// dynamic fields).
	score := binary.BigEndian.Uint16(payload[30:32])
	if score != 400 {
		t.Fatalf("scaled score slot holds %d, want 400", score)
	}
	ratingsOffset := binary.BigEndian.Uint64(payload[56:64])
	if ratingsOffset != 128 {
		t.Fatalf("metricRatings offset %d, want 128", ratingsOffset)
	}

	// First word of the ratings tail is the element count.
	ratingsLen := binary.BigEndian.Uint64(payload[ratingsOffset+24 : ratingsOffset+32])
	if ratingsLen != 5 {
		t.Fatalf("metricRatings length %d, want 5", ratingsLen)
	}
}

func TestEncodePayloadRoundTrip(t *testing.T) {
	wantRatings := []uint8{5, 5, 5, 0, 2}
	payload, err := EncodePayload(340, wantRatings, "discord:1:2", "mvp_pilot_v1")
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	score, ratings, sourceRef, communityContext, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if score != 340 {
		t.Errorf("score=%d, want 340", score)
	}
	if !reflect.DeepEqual(ratings, wantRatings) {
		t.Errorf("ratings=%v, want %v", ratings, wantRatings)
	}
	if sourceRef != "discord:1:2" {
		t.Errorf("sourceRef=%q", sourceRef)
	}
	if communityContext != "mvp_pilot_v1" {
		t.Errorf("communityContext=%q", communityContext)
	}
}

func TestParseSchemaUID(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid_with_prefix", raw: "0x" + validHex64()},
		{name: "valid_without_prefix", raw: validHex64()},
		{name: "too_short", raw: validHex64()[:40], wantErr: true},
		{name: "too_long", raw: validHex64() + "ab", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "non_hex", raw: "zz" + validHex64()[2:], wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSchemaUID(tc.raw)
			if tc.wantErr && err == nil {
				t.Fatalf("ParseSchemaUID(%q) expected error", tc.raw)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("ParseSchemaUID(%q) unexpected error: %v", tc.raw, err)
			}
		})
	}
}

func validHex64() string {
	return "a46920c2d4ef6b9c17b3e14b5bb29e1a46920c2d4ef6b9c17b3e14b5bb29e1ab"
}
