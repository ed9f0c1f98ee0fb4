// Package simulation emulates a survey drone and the ground it flies over: the flight state
// machine, hotspots of buried objects and the raw readings of each sensor.
package simulation

import (
	"math/rand/v2"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/minealert/minealert-backend/models"
)

// Simulator owns the random source of the simulation. It is safe for concurrent use.
type Simulator struct {
	mu    sync.Mutex
	rand  *rand.Rand
	field models.FieldLayout
}

func New(field models.FieldLayout, r *rand.Rand) *Simulator {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{
		rand:  r,
		field: field,
	}
}

func (s *Simulator) Field() models.FieldLayout {
	return s.field
}

// uniform returns a value in [low, high). Callers must hold the lock.
func (s *Simulator) uniform(low, high float64) float64 {
	return low + (high-low)*s.rand.Float64()
}

// LoadFieldLayout reads a yaml hotspot layout. An empty path gives the default layout.
func LoadFieldLayout(path string) (models.FieldLayout, error) {
	if path == "" {
		return models.DefaultFieldLayout(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return models.FieldLayout{}, errors.Wrapf(err, "could not read field layout %s", path)
	}

	var layout models.FieldLayout
	if err := yaml.Unmarshal(content, &layout); err != nil {
		return models.FieldLayout{}, errors.Wrapf(err, "could not parse field layout %s", path)
	}
	if err := validateFieldLayout(layout); err != nil {
		return models.FieldLayout{}, errors.Wrapf(err, "invalid field layout %s", path)
	}
	return layout, nil
}

func validateFieldLayout(layout models.FieldLayout) error {
	all := make([]models.Hotspot, 0, len(layout.Landmines)+len(layout.Debris)+len(layout.SafeZones))
	all = append(all, layout.Landmines...)
	all = append(all, layout.Debris...)
	all = append(all, layout.SafeZones...)
	if len(all) == 0 {
		return errors.New("no hotspot defined")
	}

	for i, h := range all {
		if err := models.ValidateCoordinates(h.Latitude, h.Longitude); err != nil {
			return errors.Wrapf(err, "hotspot %d", i)
		}
		if h.Radius <= 0 {
			return errors.Newf("hotspot %d: radius must be positive", i)
		}
		if h.Probability < 0 || h.Probability > 1 {
			return errors.Newf("hotspot %d: probability must be within [0, 1]", i)
		}
	}
	return nil
}
