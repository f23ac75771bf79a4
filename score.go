package tabula

import "errors"

// Score is a song: its metadata and one track per guitar.
type Score struct {
	ID       ID
	Name     string
	Artist   string
	SongName string
	Public   bool
	Tracks   []Track
}

// NewScore returns a score with a single standard-tuned guitar track.
func NewScore(ids *IDSource, name, artist, songName string) (Score, error) {
	track, err := NewTrack(ids, "Guitar", StandardGuitar())
	if err != nil {
		return Score{}, err
	}
	return Score{ID: ids.New(), Name: name, Artist: artist, SongName: songName, Tracks: []Track{track}}, nil
}

// Copy makes a deep copy of a Score.
func (s *Score) Copy() Score {
	tracks := make([]Track, len(s.Tracks))
	for i := range s.Tracks {
		tracks[i] = s.Tracks[i].Copy()
	}
	return Score{ID: s.ID, Name: s.Name, Artist: s.Artist, SongName: s.SongName, Public: s.Public, Tracks: tracks}
}

// Refit re-derives DurationsFit of every bar of every track.
func (s *Score) Refit() {
	for i := range s.Tracks {
		s.Tracks[i].Refit()
	}
}

// Validate checks that the score looks like a valid score: an id, at least
// one track, and every track valid.
func (s *Score) Validate() error {
	if s.ID == "" {
		return invalid(ErrMissingField, "score has no id")
	}
	if len(s.Tracks) == 0 {
		return errors.New("score contains no tracks")
	}
	for i := range s.Tracks {
		if err := s.Tracks[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
