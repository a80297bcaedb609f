package colour

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestHexToRGBA(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    RGBA
		wantErr bool
	}{
		{name: "six digit", hex: "#FF0000", want: RGBA{R: 1, G: 0, B: 0, A: 1}},
		{name: "no hash", hex: "00ff00", want: RGBA{R: 0, G: 1, B: 0, A: 1}},
		{name: "shorthand", hex: "#00f", want: RGBA{R: 0, G: 0, B: 1, A: 1}},
		{name: "shorthand doubles nibbles", hex: "#abc", want: RGBA{R: 0xaa / 255.0, G: 0xbb / 255.0, B: 0xcc / 255.0, A: 1}},
		{name: "eight digit alpha", hex: "#00000000", want: RGBA{A: 0}},
		{name: "empty", hex: "", wantErr: true},
		{name: "bad length", hex: "#12345", wantErr: true},
		{name: "bad digits", hex: "#GGGGGG", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToRGBA(tt.hex)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Fatalf("HexToRGBA(%q) error = %v, want ErrInvalidHex", tt.hex, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToRGBA(%q) unexpected error: %v", tt.hex, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("HexToRGBA(%q) = %+v, want %+v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestRGBAToHexClamps(t *testing.T) {
	got := RGBAToHex(RGBA{R: 1.5, G: -0.2, B: 0.5, A: 0.3})
	if got != "#FF0080" {
		t.Errorf("RGBAToHex() = %q, want %q", got, "#FF0080")
	}
	if got := RGBAToHex8(RGBA{R: 1, G: 1, B: 1, A: 0}); got != "#FFFFFF00" {
		t.Errorf("RGBAToHex8() = %q, want %q", got, "#FFFFFF00")
	}
}

func TestHexRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Uint32Range(0, 0xFFFFFF).Draw(rt, "rgb")
		hex := fmt.Sprintf("#%06X", v)
		if rapid.Bool().Draw(rt, "lower") {
			hex = strings.ToLower(hex)
		}

		c, err := HexToRGBA(hex)
		if err != nil {
			rt.Fatalf("HexToRGBA(%q): %v", hex, err)
		}
		if got := RGBAToHex(c); got != strings.ToUpper(hex) {
			rt.Fatalf("round trip %q -> %q", hex, got)
		}
	})
}

func TestBlend(t *testing.T) {
	got := Blend(Black, White, 0.25)
	want := RGBA{R: 0.25, G: 0.25, B: 0.25, A: 1}
	if !got.Equal(want) {
		t.Errorf("Blend() = %+v, want %+v", got, want)
	}

	// Out of range amounts extrapolate instead of failing.
	over := Blend(Black, White, 2)
	if over.R != 2 {
		t.Errorf("Blend(amount=2).R = %v, want 2", over.R)
	}
}

func TestShadeBaseStepIsVerbatim(t *testing.T) {
	c, err := ShadeHex("#3B82F6", BaseStep)
	if err != nil {
		t.Fatal(err)
	}
	if c.Hex != "#3B82F6" {
		t.Errorf("ShadeHex(500).Hex = %q, want %q", c.Hex, "#3B82F6")
	}
	base := MustHex("#3B82F6")
	if !c.RGBA.Equal(base) {
		t.Errorf("ShadeHex(500).RGBA = %+v, want %+v", c.RGBA, base)
	}
}

func TestShadeLegacyScenario(t *testing.T) {
	base := MustHex("#3B82F6")
	light := Shade(base, 25)
	dark := Shade(base, 975)

	if light.Sum() <= base.Sum() {
		t.Errorf("step 25 sum %v should exceed base sum %v", light.Sum(), base.Sum())
	}
	if dark.Sum() >= base.Sum() {
		t.Errorf("step 975 sum %v should be below base sum %v", dark.Sum(), base.Sum())
	}
	if !LegacyScale.Contains(25) || !LegacyScale.Contains(975) {
		t.Error("legacy scale should include 25 and 975")
	}
}

func TestShadeMonotonic(t *testing.T) {
	const eps = 1e-9
	for _, scale := range []Scale{LegacyScale, FineScale} {
		rapid.Check(t, func(rt *rapid.T) {
			v := rapid.Uint32Range(0, 0xFFFFFF).Draw(rt, "rgb")
			base := MustHex(fmt.Sprintf("%06X", v))

			prev := math.Inf(1)
			for _, step := range scale {
				sum := Shade(base, step).Sum()
				if sum > prev+eps {
					rt.Fatalf("lightness rose at step %d: %v > %v", step, sum, prev)
				}
				prev = sum
			}
		})
	}
}

func TestScaleByName(t *testing.T) {
	if s, err := ScaleByName("fine"); err != nil || len(s) != 31 {
		t.Errorf("ScaleByName(fine) = %d steps, %v", len(s), err)
	}
	if s, err := ScaleByName(""); err != nil || len(s) != 11 {
		t.Errorf("ScaleByName(\"\") = %d steps, %v", len(s), err)
	}
	if _, err := ScaleByName("huge"); err == nil {
		t.Error("ScaleByName(huge) expected error")
	}
}

func TestFineScaleSymmetric(t *testing.T) {
	n := len(FineScale)
	for i := range n {
		if FineScale[i]+FineScale[n-1-i] != 2*BaseStep {
			t.Errorf("FineScale[%d]=%d does not mirror FineScale[%d]=%d", i, FineScale[i], n-1-i, FineScale[n-1-i])
		}
	}
}

func TestBuildRamp(t *testing.T) {
	ramp := BuildRamp(MustHex("#22C55E"), LegacyScale)
	if len(ramp) != len(LegacyScale) {
		t.Fatalf("BuildRamp() = %d entries, want %d", len(ramp), len(LegacyScale))
	}
	for _, r := range ramp {
		if !r.Color.Valid() {
			t.Errorf("step %d colour %+v is inconsistent", r.Step, r.Color)
		}
	}
}

func TestColorValid(t *testing.T) {
	c, err := ParseColor("#fff")
	if err != nil {
		t.Fatal(err)
	}
	if c.Hex != "#FFFFFF" || !c.Valid() {
		t.Errorf("ParseColor(#fff) = %+v", c)
	}
	if (Color{Hex: "#000000", RGBA: White}).Valid() {
		t.Error("mismatched colour reported valid")
	}
}
