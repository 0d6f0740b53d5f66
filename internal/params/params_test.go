package params

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default() must validate, got %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	valid := func() Set { return Default() }

	cases := []struct {
		name   string
		mutate func(*Set)
		wantOK bool
	}{
		{"passes at lower bound", func(s *Set) { s.Passes = 1 }, true},
		{"passes at upper bound", func(s *Set) { s.Passes = 8 }, true},
		{"passes below range", func(s *Set) { s.Passes = 0 }, false},
		{"passes above range", func(s *Set) { s.Passes = 9 }, false},
		{"radius at lower bound", func(s *Set) { s.Radius = 1.0 }, true},
		{"radius at upper bound", func(s *Set) { s.Radius = 20.0 }, true},
		{"radius below range", func(s *Set) { s.Radius = 0.99 }, false},
		{"radius above range", func(s *Set) { s.Radius = 20.01 }, false},
		{"noise at upper bound", func(s *Set) { s.Noise = 0.1 }, true},
		{"noise above range", func(s *Set) { s.Noise = 0.11 }, false},
		{"saturation above range", func(s *Set) { s.Saturation = 2.01 }, false},
		{"vibrancy darkness above range", func(s *Set) { s.VibrancyDarkness = 1.01 }, false},
		{"tint alpha above range", func(s *Set) { s.TintA = 1.5 }, false},
		{"unsupported algorithm", func(s *Set) { s.Algorithm = Algorithm(1) }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(&s)
			err := Validate(s)
			if tc.wantOK && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Errorf("expected error, got none")
			}
		})
	}
}

func TestEffectiveBlurSize(t *testing.T) {
	s := Default()
	s.Passes = 3
	s.Radius = 5.0
	got := s.EffectiveBlurSize()
	want := float32(16 * 5.0) // 2^(3+1) * 5.0
	if got != want {
		t.Errorf("EffectiveBlurSize() = %v, want %v", got, want)
	}
}
