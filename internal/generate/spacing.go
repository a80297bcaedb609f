package generate

import (
	"fmt"
	"math"

	"github.com/jmylchreest/tokenkit/internal/token"
)

// Progression selects how a spacing ladder grows.
type Progression string

const (
	ProgressionLinear    Progression = "linear"
	ProgressionFibonacci Progression = "fibonacci"
	ProgressionGolden    Progression = "golden"
)

// GoldenRatio is truncated to the precision used by the golden progression.
const GoldenRatio = 1.618

// ParseProgression converts a name into a Progression. Empty means linear.
func ParseProgression(s string) (Progression, error) {
	switch Progression(s) {
	case "", ProgressionLinear:
		return ProgressionLinear, nil
	case ProgressionFibonacci, ProgressionGolden:
		return Progression(s), nil
	}
	return "", &token.ValidationError{Field: "spacing.progression", Message: fmt.Sprintf("unknown progression %q", s)}
}

// SpacingLadder names the spacing steps, smallest first.
var SpacingLadder = []string{"3xs", "2xs", "xs", "sm", "md", "lg", "xl", "2xl", "3xl", "4xl"}

// IconSizes are fixed pixel sizes.
var IconSizes = []NamedNumber{
	{"xs", 12},
	{"sm", 16},
	{"md", 20},
	{"lg", 24},
	{"xl", 32},
}

// GapSteps maps each gap name to the spacing step it uses on desktop.
// Narrower breakpoints step down the spacing ladder.
var GapSteps = []struct{ Name, Spacing string }{
	{"xs", "2xs"},
	{"sm", "xs"},
	{"md", "sm"},
	{"lg", "md"},
	{"xl", "lg"},
}

// gapBreakpoints lists how many spacing steps each breakpoint drops.
var gapBreakpoints = []struct {
	Mode string
	Drop int
}{
	{token.ModeDesktop, 0},
	{token.ModeTablet, 1},
	{token.ModeMobile, 2},
}

// SpacingConfig configures Spacing.
type SpacingConfig struct {
	Base        float64
	Progression Progression
}

// fib returns the i-th term of 1, 2, 3, 5, 8, ...
func fib(i int) float64 {
	a, b := 1.0, 2.0
	for range i {
		a, b = b, a+b
	}
	return a
}

// SpacingValues expands base into one value per SpacingLadder step.
func SpacingValues(base float64, prog Progression) []NamedNumber {
	out := make([]NamedNumber, len(SpacingLadder))
	for i, name := range SpacingLadder {
		var v float64
		switch prog {
		case ProgressionFibonacci:
			v = base * fib(i)
		case ProgressionGolden:
			v = math.Round(base * math.Pow(GoldenRatio, float64(i)))
		default:
			v = base * float64(i+1)
		}
		out[i] = NamedNumber{Name: name, Value: v}
	}
	return out
}

// GapValues resolves every gap step against a spacing ladder, one value per
// breakpoint mode.
func GapValues(spacing []NamedNumber) map[string]map[string]float64 {
	index := make(map[string]int, len(spacing))
	for i, row := range spacing {
		index[row.Name] = i
	}
	out := make(map[string]map[string]float64, len(GapSteps))
	for _, g := range GapSteps {
		i, ok := index[g.Spacing]
		if !ok {
			continue
		}
		modes := make(map[string]float64, len(gapBreakpoints))
		for _, bp := range gapBreakpoints {
			modes[bp.Mode] = spacing[max(i-bp.Drop, 0)].Value
		}
		out[g.Name] = modes
	}
	return out
}

// Spacing emits the spacing ladder, the responsive gap ladder and the
// fixed icon sizes.
func (p *Pipeline) Spacing(cfg SpacingConfig) (Report, error) {
	if cfg.Base <= 0 {
		return Report{}, &token.ValidationError{Field: "spacing.base", Message: "base unit must be positive"}
	}
	prog, err := ParseProgression(string(cfg.Progression))
	if err != nil {
		return Report{}, err
	}

	var r Report
	ladder := SpacingValues(cfg.Base, prog)
	for _, row := range ladder {
		err := p.create(&r, token.Draft{
			Name:       row.Name,
			Path:       []string{"spacing"},
			Value:      token.NumberValue(row.Value),
			Collection: token.CollectionSpacing,
			Tags:       []string{"spacing", string(prog)},
		})
		if err != nil {
			return r, err
		}
	}
	gaps := GapValues(ladder)
	for _, g := range GapSteps {
		modes := gaps[g.Name]
		values := make(map[string]token.Value, len(modes))
		for m, v := range modes {
			values[m] = token.NumberValue(v)
		}
		err := p.create(&r, token.Draft{
			Name:       g.Name,
			Path:       []string{"gap"},
			Value:      token.NumberValue(modes[token.ModeDesktop]),
			ModeValues: values,
			Collection: token.CollectionGap,
			Tags:       []string{"gap", string(prog)},
		})
		if err != nil {
			return r, err
		}
	}
	for _, row := range IconSizes {
		err := p.create(&r, token.Draft{
			Name:       row.Name,
			Path:       []string{"icon", "size"},
			Value:      token.NumberValue(row.Value),
			Collection: token.CollectionIconSize,
			Tags:       []string{"icon"},
		})
		if err != nil {
			return r, err
		}
	}
	p.logger.Debug("generated spacing", "base", cfg.Base, "progression", prog)
	return r, nil
}
