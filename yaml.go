package tabula

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReadScore decodes a YAML document into a plain object and builds the score
// through ScoreFromObject, so missing required fields are reported rather
// than defaulted. Bars come back with DurationsFit derived.
func ReadScore(r io.Reader, ids *IDSource) (Score, error) {
	var obj Object
	if err := yaml.NewDecoder(r).Decode(&obj); err != nil {
		return Score{}, fmt.Errorf("could not decode score: %w", err)
	}
	s, err := ScoreFromObject(obj, ids)
	if err != nil {
		return Score{}, err
	}
	if err := s.Validate(); err != nil {
		return Score{}, err
	}
	return s, nil
}

// WriteScore encodes the plain object form of the score as YAML.
func WriteScore(w io.Writer, s Score) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.ToObject()); err != nil {
		return fmt.Errorf("could not encode score: %w", err)
	}
	return enc.Close()
}

// MarshalBeats encodes beats, e.g. for a clipboard.
func MarshalBeats(beats []Beat) ([]byte, error) {
	list := make([]any, len(beats))
	for i := range beats {
		list[i] = beats[i].ToObject()
	}
	return yaml.Marshal(Object{"beats": list})
}

// UnmarshalBeats decodes beats written by MarshalBeats for a guitar with the
// given string count. Notes on strings the guitar does not have are rejected.
func UnmarshalBeats(data []byte, stringsCount int, ids *IDSource) ([]Beat, error) {
	var obj Object
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("could not decode beats: %w", err)
	}
	var beats []Beat
	err := objectReader{obj: obj, path: "clipboard"}.each("beats", true, func(r objectReader) error {
		b, err := beatFromReader(r, stringsCount, ids)
		if err != nil {
			return err
		}
		beats = append(beats, b)
		return nil
	})
	return beats, err
}
