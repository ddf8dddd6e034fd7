package scoring

import (
	"errors"
	"testing"
)

func TestCalculateScore(t *testing.T) {
	cases := []struct {
		name    string
		metrics []int
		want    float64
		wantErr bool
	}{
		{name: "all_fives", metrics: []int{5, 5, 5, 5, 5}, want: 5.0},
		{name: "all_zeros", metrics: []int{0, 0, 0, 0, 0}, want: 0.0},
		{name: "mixed", metrics: []int{5, 4, 3, 2, 1}, want: 3.0},
		{name: "silver_boundary", metrics: []int{5, 4, 3, 4, 4}, want: 4.0},
		{name: "too_short", metrics: []int{5, 4, 3, 2}, wantErr: true},
		{name: "too_long", metrics: []int{5, 4, 3, 2, 1, 0}, wantErr: true},
		{name: "empty", metrics: nil, wantErr: true},
		{name: "negative", metrics: []int{5, 4, -1, 2, 1}, wantErr: true},
		{name: "above_range", metrics: []int{5, 4, 6, 2, 1}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateScore(tc.metrics)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("CalculateScore(%v) expected error, got %v", tc.metrics, got)
				}
				if !errors.Is(err, ErrInvalidMetrics) {
					t.Fatalf("CalculateScore(%v) error=%v, want ErrInvalidMetrics", tc.metrics, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateScore(%v) unexpected error: %v", tc.metrics, err)
			}
			if got != tc.want {
				t.Fatalf("CalculateScore(%v)=%v, want %v", tc.metrics, got, tc.want)
			}
		})
	}
}

func TestGetTierBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{0.0, TierNone},
		{2.9, TierNone},
		{3.0, TierBronze},
		{3.9, TierBronze},
		{4.0, TierSilver},
		{4.5, TierSilver},
		{4.6, TierGold},
		{5.0, TierGold},
	}

	for _, tc := range cases {
		if got := GetTier(tc.score); got != tc.want {
			t.Errorf("GetTier(%v)=%q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestGetEmoji(t *testing.T) {
	for tier, want := range map[Tier]string{
		TierBronze: "🥉",
		TierSilver: "🥈",
		TierGold:   "🥇",
	} {
		got, err := GetEmoji(tier)
		if err != nil {
			t.Fatalf("GetEmoji(%q) unexpected error: %v", tier, err)
		}
		if got != want {
			t.Errorf("GetEmoji(%q)=%q, want %q", tier, got, want)
		}
	}

	if _, err := GetEmoji(TierNone); err == nil {
		t.Fatal("GetEmoji(TierNone) expected error")
	}
	if _, err := GetEmoji(Tier("Platinum")); err == nil {
		t.Fatal("GetEmoji(Platinum) expected error")
	}
}
