package params

import "testing"

func TestNewRegistryHasBuiltins(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"window", "panel", "hud", "tooltip"} {
		set, err := reg.Lookup(name)
		if err != nil {
			t.Errorf("builtin preset %q missing: %v", name, err)
			continue
		}
		if err := Validate(set); err != nil {
			t.Errorf("builtin preset %q invalid: %v", name, err)
		}
	}
}

func TestLookupUnknownPreset(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Lookup("does-not-exist"); err != ErrPresetNotFound {
		t.Errorf("Lookup(unknown) = %v, want ErrPresetNotFound", err)
	}
}

func TestPutRejectsOversizedName(t *testing.T) {
	reg := NewRegistry()
	longName := make([]byte, MaxPresetNameLen+1)
	for i := range longName {
		longName[i] = 'a'
	}
	if err := reg.Put(string(longName), Default()); err == nil {
		t.Error("Put with oversized name should fail")
	}
}

func TestPutRejectsInvalidSet(t *testing.T) {
	reg := NewRegistry()
	bad := Default()
	bad.Passes = 0
	if err := reg.Put("broken", bad); err == nil {
		t.Error("Put with invalid set should fail")
	}
}

func TestResolveOrder(t *testing.T) {
	reg := NewRegistry()
	configDefault := Default()
	configDefault.Radius = 9.0
	override := Default()
	override.Radius = 13.0

	t.Run("named preset wins over everything", func(t *testing.T) {
		got := reg.Resolve("window", &override, &configDefault)
		want, _ := reg.Lookup("window")
		if got != want {
			t.Errorf("Resolve = %+v, want %+v", got, want)
		}
	})

	t.Run("unknown preset falls through to override", func(t *testing.T) {
		got := reg.Resolve("no-such-preset", &override, &configDefault)
		if got != override {
			t.Errorf("Resolve = %+v, want override %+v", got, override)
		}
	})

	t.Run("empty preset name falls through to override", func(t *testing.T) {
		got := reg.Resolve("", &override, &configDefault)
		if got != override {
			t.Errorf("Resolve = %+v, want override %+v", got, override)
		}
	})

	t.Run("no preset, no override falls to config defaults", func(t *testing.T) {
		got := reg.Resolve("", nil, &configDefault)
		if got != configDefault {
			t.Errorf("Resolve = %+v, want config defaults %+v", got, configDefault)
		}
	})

	t.Run("nothing supplied falls to hardcoded defaults", func(t *testing.T) {
		got := reg.Resolve("", nil, nil)
		if got != Default() {
			t.Errorf("Resolve = %+v, want Default() %+v", got, Default())
		}
	})
}
