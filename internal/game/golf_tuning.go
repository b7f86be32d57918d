package game

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// LoadTuning returns the default physics parameters overridden by any keys
// present in the TOML file at path. An empty path or a missing file yields
// the defaults.
func LoadTuning(path string) (Params, error) {
	params := DefaultParams()
	if path == "" {
		return params, nil
	}

	md, err := toml.DecodeFile(path, &params)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultParams(), nil
		}
		return Params{}, fmt.Errorf("decode tuning file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Params{}, fmt.Errorf("unknown tuning keys in %s: %v", path, undecoded)
	}
	if err := ValidateTuning(params); err != nil {
		return Params{}, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return params, nil
}

// ValidateTuning rejects parameter sets the generator or integrator cannot
// run with.
func ValidateTuning(p Params) error {
	switch {
	case p.MinSegLen <= 0 || p.MaxSegLen < p.MinSegLen:
		return errors.New("segment lengths must satisfy 0 < min_seg_len <= max_seg_len")
	case p.MaxGroundHeight < p.MinGroundHeight:
		return errors.New("max_ground_height below min_ground_height")
	case p.FlatChance < 0 || p.FlatChance > 1:
		return errors.New("flat_chance must be within [0, 1]")
	case p.HoleMinX-p.HoleWidth() <= StartX || p.HoleMaxX+p.HoleWidth() >= 1 || p.HoleMaxX < p.HoleMinX:
		return errors.New("hole range must fit between the tee and x=1")
	case p.GravityY >= 0:
		return errors.New("gravity_y must be negative")
	case p.ShotStrength <= 0:
		return errors.New("shot_strength must be positive")
	case p.RestSpeed <= 0:
		return errors.New("rest_speed must be positive")
	case p.RestClearance <= 0:
		return errors.New("rest_clearance must be positive")
	case p.BounceLoss < 0 || p.BounceLoss >= 1:
		return errors.New("bounce_loss must be within [0, 1)")
	case p.GameSpeed <= 0:
		return errors.New("game_speed must be positive")
	case p.MaxBounces < 1:
		return errors.New("max_bounces must be at least 1")
	}
	return nil
}
