package geosynth

import (
	"encoding/json"
	"fmt"
	"os"
)

// LightingModel describes the light sources of a scene, decoded from
// the scene's lighting.json.
type LightingModel struct {
	// Ambient is the scene's ambient light.
	Ambient AmbientLight `json:"ambient"`

	// Points are the point light sources.
	Points []PointLight `json:"points"`

	// Directionals are the directional light sources.
	Directionals []DirectionalLight `json:"directionals"`
}

func (*LightingModel) value() {}

// AmbientLight is a light source with no position or direction.
type AmbientLight struct {
	// Color is RGB in range [0, 1].
	Color [3]float32 `json:"color"`

	// Intensity is a scalar in the range [0, 1].
	Intensity float32 `json:"intensity"`
}

// PointLight is a light source at a position in the camera's
// coordinate system.
type PointLight struct {
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`

	// Position is xyz in meters.
	Position [3]float32 `json:"position"`
}

// DirectionalLight is an oriented light source.
type DirectionalLight struct {
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`

	// Direction is a unit-norm xyz vector in the camera's coordinate
	// system, origin at the light position.
	Direction [3]float32 `json:"direction"`

	// Volume is an un-normalized 3x3 rotation matrix; row norm is the
	// axis length in meters.
	Volume [3][3]float32 `json:"volume"`
}

// rawLighting mirrors LightingModel with slice-typed vectors so that
// element counts can be checked. Unmarshaling straight into the fixed
// arrays would silently truncate or zero-fill malformed files.
type rawLighting struct {
	Ambient struct {
		Color     []float32 `json:"color"`
		Intensity float32   `json:"intensity"`
	} `json:"ambient"`
	Points []struct {
		Color     []float32 `json:"color"`
		Intensity float32   `json:"intensity"`
		Position  []float32 `json:"position"`
	} `json:"points"`
	Directionals []struct {
		Color     []float32   `json:"color"`
		Intensity float32     `json:"intensity"`
		Direction []float32   `json:"direction"`
		Volume    [][]float32 `json:"volume"`
	} `json:"directionals"`
}

// vec3Of checks a JSON vector holds exactly three elements. An absent
// vector decodes to the zero value.
func vec3Of(field string, v []float32) ([3]float32, error) {
	if v == nil {
		return [3]float32{}, nil
	}
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("%s has %d elements, want 3", field, len(v))
	}
	return [3]float32{v[0], v[1], v[2]}, nil
}

func mat3Of(field string, m [][]float32) ([3][3]float32, error) {
	var out [3][3]float32
	if m == nil {
		return out, nil
	}
	if len(m) != 3 {
		return out, fmt.Errorf("%s has %d rows, want 3", field, len(m))
	}
	for i, row := range m {
		r, err := vec3Of(fmt.Sprintf("%s row %d", field, i), row)
		if err != nil {
			return out, err
		}
		out[i] = r
	}
	return out, nil
}

// decodeLighting reads and validates a lighting.json file.
func decodeLighting(path string) (*LightingModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, decodeErr(path, "reading lighting: %v", err)
	}

	var in rawLighting
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, decodeErr(path, "parsing lighting: %v", err)
	}

	model := &LightingModel{}
	if model.Ambient.Color, err = vec3Of("ambient color", in.Ambient.Color); err != nil {
		return nil, decodeErr(path, "%v", err)
	}
	model.Ambient.Intensity = in.Ambient.Intensity

	for i, p := range in.Points {
		pl := PointLight{Intensity: p.Intensity}
		if pl.Color, err = vec3Of(fmt.Sprintf("point %d color", i), p.Color); err != nil {
			return nil, decodeErr(path, "%v", err)
		}
		if pl.Position, err = vec3Of(fmt.Sprintf("point %d position", i), p.Position); err != nil {
			return nil, decodeErr(path, "%v", err)
		}
		model.Points = append(model.Points, pl)
	}

	for i, d := range in.Directionals {
		dl := DirectionalLight{Intensity: d.Intensity}
		if dl.Color, err = vec3Of(fmt.Sprintf("directional %d color", i), d.Color); err != nil {
			return nil, decodeErr(path, "%v", err)
		}
		if dl.Direction, err = vec3Of(fmt.Sprintf("directional %d direction", i), d.Direction); err != nil {
			return nil, decodeErr(path, "%v", err)
		}
		if dl.Volume, err = mat3Of(fmt.Sprintf("directional %d volume", i), d.Volume); err != nil {
			return nil, decodeErr(path, "%v", err)
		}
		model.Directionals = append(model.Directionals, dl)
	}

	return model, nil
}
