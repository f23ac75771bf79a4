package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tabula-go/tabula"
	"gopkg.in/yaml.v2"
)

// Dim holds the dimensions used by the layout engine. Widths are keyed by
// duration name, see tabula.Duration.Name.
type Dim struct {
	DurationWidths     map[string]float64 `yaml:"durationWidths"`
	DotFactors         []float64          `yaml:"dotFactors,flow"`
	TupletWidthScale   float64            `yaml:"tupletWidthScale"`
	NoteHeight         float64            `yaml:"noteHeight"`
	FretDigitWidth     float64            `yaml:"fretDigitWidth"`
	LabelHeight        float64            `yaml:"labelHeight"`
	TupletHeight       float64            `yaml:"tupletHeight"`
	DurationsHeight    float64            `yaml:"durationsHeight"`
	DurationGlyphWidth float64            `yaml:"durationGlyphWidth"`
	BeamHeight         float64            `yaml:"beamHeight"`
	ShortBeamWidth     float64            `yaml:"shortBeamWidth"`
	BarPadding         float64            `yaml:"barPadding"`
	BarHeaderWidth     float64            `yaml:"barHeaderWidth"`
	RepeatWidth        float64            `yaml:"repeatWidth"`
	LineWidth          float64            `yaml:"lineWidth"`
	LineGap            float64            `yaml:"lineGap"`
}

var ErrInvalidDim = errors.New("invalid layout dimensions")

//go:embed dimensions.yml
var defaultDimensionsYaml []byte

// DefaultDim returns the dimensions embedded in the binary.
func DefaultDim() Dim {
	var dim Dim
	if err := yaml.UnmarshalStrict(defaultDimensionsYaml, &dim); err != nil {
		panic(fmt.Errorf("failed to unmarshal dimensions: %w", err))
	}
	return dim
}

// ReadCustomConfigYml modifies the target argument, i.e. needs a pointer
func ReadCustomConfigYml(filename string, target any) (exists bool, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return false, err
	}
	path := filepath.Join(configDir, "tabula", filename)
	bytes, err2 := os.ReadFile(path)
	if err2 != nil {
		return false, err2
	}
	err = yaml.UnmarshalStrict(bytes, target)
	return true, err
}

// LoadDim returns the embedded dimensions overlaid with the user's
// dimensions.yml, if there is one. A broken user file is reported but the
// defaults are still returned.
func LoadDim() (Dim, error) {
	dim := DefaultDim()
	exists, err := ReadCustomConfigYml("dimensions.yml", &dim)
	if exists && err != nil {
		return DefaultDim(), fmt.Errorf("could not read dimensions.yml: %w", err)
	}
	if err := dim.Validate(); err != nil {
		return DefaultDim(), err
	}
	return dim, nil
}

// Validate checks that every duration has a width and every dot count a
// factor.
func (d Dim) Validate() error {
	for _, dur := range tabula.Durations {
		if w, ok := d.DurationWidths[dur.Name()]; !ok || w <= 0 {
			return fmt.Errorf("%w: no width for duration %s", ErrInvalidDim, dur.Name())
		}
	}
	if len(d.DotFactors) != tabula.MaxDots+1 {
		return fmt.Errorf("%w: expected %d dot factors, got %d", ErrInvalidDim, tabula.MaxDots+1, len(d.DotFactors))
	}
	for name, v := range map[string]float64{
		"noteHeight":       d.NoteHeight,
		"labelHeight":      d.LabelHeight,
		"durationsHeight":  d.DurationsHeight,
		"lineWidth":        d.LineWidth,
		"tupletWidthScale": d.TupletWidthScale,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidDim, name)
		}
	}
	return nil
}

// BeatWidth returns the width of a beat of duration d with the given number
// of dots. A duration without a configured width is a programming error.
func (d Dim) BeatWidth(dur tabula.Duration, dots int) float64 {
	w, ok := d.DurationWidths[dur.Name()]
	if !ok {
		panic(fmt.Sprintf("layout: no width for duration %v", dur))
	}
	if dots < 0 || dots >= len(d.DotFactors) {
		panic(fmt.Sprintf("layout: no width factor for %d dots", dots))
	}
	return w * d.DotFactors[dots]
}
