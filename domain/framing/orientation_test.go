package framing_test

import (
	"testing"

	"github.com/felixgeelhaar/framing-go/domain/framing"
)

func TestOrientationValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		orientation framing.Orientation
		want        bool
	}{
		{"exploratory", framing.OrientationExploratory, true},
		{"critical", framing.OrientationCritical, true},
		{"problem_solving", framing.OrientationProblemSolving, true},
		{"constructive", framing.OrientationConstructive, true},
		{"empty", framing.Orientation(""), false},
		{"unknown", framing.Orientation("speculative"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.orientation.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfileMerge(t *testing.T) {
	t.Parallel()

	t.Run("takes maximum per orientation", func(t *testing.T) {
		t.Parallel()

		p := framing.NewProfile()
		p[framing.OrientationCritical] = 0.8
		p[framing.OrientationExploratory] = 0.2

		other := framing.Profile{
			framing.OrientationCritical:    0.3,
			framing.OrientationExploratory: 0.6,
		}
		p.Merge(other)

		if p[framing.OrientationCritical] != 0.8 {
			t.Errorf("critical = %v, want 0.8", p[framing.OrientationCritical])
		}
		if p[framing.OrientationExploratory] != 0.6 {
			t.Errorf("exploratory = %v, want 0.6", p[framing.OrientationExploratory])
		}
	})

	t.Run("ignores unknown orientations", func(t *testing.T) {
		t.Parallel()

		p := framing.NewProfile()
		p.Merge(framing.Profile{framing.Orientation("bogus"): 1.0})

		if _, ok := p[framing.Orientation("bogus")]; ok {
			t.Error("Merge() should not add unknown orientations")
		}
	})

	t.Run("merge is idempotent", func(t *testing.T) {
		t.Parallel()

		p := framing.NewProfile()
		other := framing.Profile{framing.OrientationConstructive: 0.5}
		p.Merge(other)
		p.Merge(other)

		if p[framing.OrientationConstructive] != 0.5 {
			t.Errorf("constructive = %v, want 0.5", p[framing.OrientationConstructive])
		}
	})
}

func TestProfileDominant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile framing.Profile
		want    framing.Orientation
	}{
		{
			name:    "highest weight wins",
			profile: framing.Profile{framing.OrientationProblemSolving: 0.9, framing.OrientationCritical: 0.4},
			want:    framing.OrientationProblemSolving,
		},
		{
			name:    "tie resolves in canonical order",
			profile: framing.Profile{framing.OrientationCritical: 0.5, framing.OrientationConstructive: 0.5},
			want:    framing.OrientationCritical,
		},
		{
			name:    "all zero falls back to exploratory",
			profile: framing.NewProfile(),
			want:    framing.OrientationExploratory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.profile.Dominant(); got != tt.want {
				t.Errorf("Dominant() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKeywordMapMerge(t *testing.T) {
	t.Parallel()

	t.Run("unions terms preserving first-seen order", func(t *testing.T) {
		t.Parallel()

		m := framing.NewKeywordMap()
		m[framing.OrientationCritical] = []string{"assumption", "bias"}

		other := framing.KeywordMap{
			framing.OrientationCritical: {"bias", "blind spot"},
		}
		m.Merge(other)

		got := m[framing.OrientationCritical]
		want := []string{"assumption", "bias", "blind spot"}
		if len(got) != len(want) {
			t.Fatalf("critical terms = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("terms[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("ignores unknown orientations", func(t *testing.T) {
		t.Parallel()

		m := framing.NewKeywordMap()
		m.Merge(framing.KeywordMap{framing.Orientation("bogus"): {"term"}})

		if _, ok := m[framing.Orientation("bogus")]; ok {
			t.Error("Merge() should not add unknown orientations")
		}
	})
}
