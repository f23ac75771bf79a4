package tabula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
)

// Object is the plain object form of an entity: string keys mapping to
// strings, numbers, booleans, lists and nested objects. It is what YAML and
// JSON decoders produce when decoding into an untyped value.
type Object = map[string]any

// objectReader pulls typed fields out of an Object and remembers the path
// for error messages.
type objectReader struct {
	obj  Object
	path string
}

func (r objectReader) missing(key string) error {
	return invalid(ErrMissingField, "%s: missing required field %q", r.path, key)
}

func (r objectReader) wrong(key, want string, v any) error {
	return invalid(ErrInvalidField, "%s: field %q must be %s, got %T", r.path, key, want, v)
}

func (r objectReader) string(key string, required bool) (string, bool, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		if required {
			return "", false, r.missing(key)
		}
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, r.wrong(key, "a string", v)
	}
	return s, true, nil
}

func (r objectReader) bool(key string, required bool) (bool, bool, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		if required {
			return false, false, r.missing(key)
		}
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, r.wrong(key, "a boolean", v)
	}
	return b, true, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func (r objectReader) float(key string, required bool) (float64, bool, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		if required {
			return 0, false, r.missing(key)
		}
		return 0, false, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false, r.wrong(key, "a number", v)
	}
	return f, true, nil
}

func (r objectReader) int(key string, required bool) (int, bool, error) {
	f, ok, err := r.float(key, required)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != math.Trunc(f) {
		return 0, false, r.wrong(key, "an integer", r.obj[key])
	}
	return int(f), true, nil
}

func (r objectReader) list(key string, required bool) ([]any, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		if required {
			return nil, r.missing(key)
		}
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, r.wrong(key, "a list", v)
	}
	return l, nil
}

func (r objectReader) object(key string, required bool) (Object, bool, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		if required {
			return nil, false, r.missing(key)
		}
		return nil, false, nil
	}
	o, err := asObject(v, r.path+"."+key)
	return o, err == nil, err
}

// id reads the identity token, generating one when absent and not required.
func (r objectReader) id(ids *IDSource, required bool) (ID, error) {
	s, ok, err := r.string("id", required)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		if required {
			return "", r.missing("id")
		}
		return ids.New(), nil
	}
	return ID(s), nil
}

func asObject(v any, path string) (Object, error) {
	switch o := v.(type) {
	case map[string]any:
		return o, nil
	case map[any]any:
		ret := make(Object, len(o))
		for k, val := range o {
			ks, ok := k.(string)
			if !ok {
				return nil, invalid(ErrInvalidField, "%s: non-string key %v", path, k)
			}
			ret[ks] = val
		}
		return ret, nil
	}
	return nil, invalid(ErrInvalidField, "%s: expected an object, got %T", path, v)
}

func (r objectReader) each(key string, required bool, f func(objectReader) error) error {
	l, err := r.list(key, required)
	if err != nil {
		return err
	}
	for i, v := range l {
		path := fmt.Sprintf("%s.%s[%d]", r.path, key, i)
		o, err := asObject(v, path)
		if err != nil {
			return err
		}
		if err := f(objectReader{obj: o, path: path}); err != nil {
			return err
		}
	}
	return nil
}

// ParsePitch parses a pitch in scientific notation ("E4", "F#2", "Bb3").
func ParsePitch(s string) (midi.Note, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, invalid(ErrInvalidField, "invalid pitch %q", s)
	}
	base := map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	n, ok := base[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, invalid(ErrInvalidField, "invalid pitch %q", s)
	}
	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		n++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		n--
		rest = rest[1:]
	}
	oct, err := strconv.Atoi(rest)
	if err != nil {
		return 0, invalid(ErrInvalidField, "invalid pitch %q", s)
	}
	p := (oct+1)*12 + n
	if p < 0 || p > 127 {
		return 0, invalid(ErrInvalidField, "pitch %q out of MIDI range", s)
	}
	return midi.Note(p), nil
}

// ToObject returns the plain object form of the effect.
func (e Effect) ToObject() Object {
	o := Object{"id": string(e.ID), "type": e.Type.String()}
	if e.Options != nil {
		opts := Object{}
		for k, v := range e.Options.Values() {
			opts[k] = v
		}
		o["options"] = opts
	}
	return o
}

// EffectFromObject validates and builds an effect. The type is required, and
// so are the options when the type demands them; their key set must match
// exactly.
func EffectFromObject(obj Object, ids *IDSource) (Effect, error) {
	return effectFromReader(objectReader{obj: obj, path: "effect"}, ids)
}

func effectFromReader(r objectReader, ids *IDSource) (Effect, error) {
	id, err := r.id(ids, false)
	if err != nil {
		return Effect{}, err
	}
	name, _, err := r.string("type", true)
	if err != nil {
		return Effect{}, err
	}
	t, err := ParseEffectType(name)
	if err != nil {
		return Effect{}, err
	}
	optsObj, present, err := r.object("options", false)
	if err != nil {
		return Effect{}, err
	}
	if !present {
		if DemandsOptions(t) {
			return Effect{}, r.missing("options")
		}
		return NewEffectFromValues(id, t, nil)
	}
	values := make(map[string]float64, len(optsObj))
	for k, v := range optsObj {
		f, ok := toFloat(v)
		if !ok {
			return Effect{}, invalid(ErrInvalidEffectOptions, "%s: option %q of %v must be a number, got %T", r.path, k, t, v)
		}
		values[k] = f
	}
	return NewEffectFromValues(id, t, values)
}

// ToObject returns the plain object form of the note. Empty slots have no
// fret field.
func (n *Note) ToObject() Object {
	o := Object{"id": string(n.ID), "string": n.String}
	if n.HasFret() {
		o["fret"] = n.Fret
	}
	if len(n.Effects) > 0 {
		effects := make([]any, len(n.Effects))
		for i, e := range n.Effects {
			effects[i] = e.ToObject()
		}
		o["effects"] = effects
	}
	return o
}

// NoteFromObject builds a note; string is required, fret optional.
func NoteFromObject(obj Object, stringsCount int, ids *IDSource) (Note, error) {
	return noteFromReader(objectReader{obj: obj, path: "note"}, stringsCount, ids)
}

func noteFromReader(r objectReader, stringsCount int, ids *IDSource) (Note, error) {
	id, err := r.id(ids, false)
	if err != nil {
		return Note{}, err
	}
	s, _, err := r.int("string", true)
	if err != nil {
		return Note{}, err
	}
	if s < 1 || s > stringsCount {
		return Note{}, invalid(ErrInvalidPosition, "%s: string %d out of range 1..%d", r.path, s, stringsCount)
	}
	n := NewNote(id, s)
	fret, ok, err := r.int("fret", false)
	if err != nil {
		return Note{}, err
	}
	if ok {
		if err := n.SetFret(fret); err != nil {
			return Note{}, err
		}
	}
	err = r.each("effects", false, func(er objectReader) error {
		e, err := effectFromReader(er, ids)
		if err != nil {
			return err
		}
		if !n.HasFret() {
			return invalid(ErrNoFret, "%s: effect %v on a note without fret", er.path, e.Type)
		}
		for _, prev := range n.Effects {
			if Incompatible(prev.Type, e.Type) {
				return invalid(ErrIncompatibleEffect, "%s: %v is incompatible with %v", er.path, e.Type, prev.Type)
			}
		}
		n.Effects = append(n.Effects, e)
		return nil
	})
	return n, err
}

// ToObject returns the plain object form of the beat.
func (b *Beat) ToObject() Object {
	notes := make([]any, len(b.Notes))
	for i := range b.Notes {
		notes[i] = b.Notes[i].ToObject()
	}
	o := Object{"id": string(b.ID), "duration": b.Duration.String(), "notes": notes}
	if b.Dots > 0 {
		o["dots"] = b.Dots
	}
	if b.BeamGroup != "" {
		o["beamGroup"] = string(b.BeamGroup)
	}
	return o
}

// BeatFromObject builds a beat. The notes list may be sparse; strings not
// listed get empty slots.
func BeatFromObject(obj Object, stringsCount int, ids *IDSource) (Beat, error) {
	return beatFromReader(objectReader{obj: obj, path: "beat"}, stringsCount, ids)
}

func parseDurationField(r objectReader, key string) (Duration, error) {
	v, ok := r.obj[key]
	if !ok || v == nil {
		return 0, r.missing(key)
	}
	if s, ok := v.(string); ok {
		d, err := ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", r.path, err)
		}
		return d, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, r.wrong(key, "a duration", v)
	}
	if d := Duration(f); d.Valid() {
		return d, nil
	}
	return 0, invalid(ErrUnknownDuration, "%s: unknown duration %v", r.path, f)
}

func beatFromReader(r objectReader, stringsCount int, ids *IDSource) (Beat, error) {
	id, err := r.id(ids, false)
	if err != nil {
		return Beat{}, err
	}
	d, err := parseDurationField(r, "duration")
	if err != nil {
		return Beat{}, err
	}
	b := Beat{ID: id, Duration: d, Notes: make([]Note, stringsCount)}
	dots, _, err := r.int("dots", false)
	if err != nil {
		return Beat{}, err
	}
	if err := b.SetDots(dots); err != nil {
		return Beat{}, err
	}
	beam, _, err := r.string("beamGroup", false)
	if err != nil {
		return Beat{}, err
	}
	b.BeamGroup = ID(beam)
	err = r.each("notes", false, func(nr objectReader) error {
		n, err := noteFromReader(nr, stringsCount, ids)
		if err != nil {
			return err
		}
		if b.Notes[n.String-1].ID != "" {
			return invalid(ErrInvalidPosition, "%s: string %d appears twice", nr.path, n.String)
		}
		b.Notes[n.String-1] = n
		return nil
	})
	if err != nil {
		return Beat{}, err
	}
	for i := range b.Notes {
		if b.Notes[i].ID == "" {
			b.Notes[i] = NewNote(ids.New(), i+1)
		}
	}
	return b, nil
}

// ToObject returns the plain object form of the bar.
func (b *Bar) ToObject() Object {
	beats := make([]any, len(b.Beats))
	for i := range b.Beats {
		beats[i] = b.Beats[i].ToObject()
	}
	o := Object{
		"id":           string(b.ID),
		"beatsCount":   b.BeatsCount,
		"beatDuration": b.BeatDuration.String(),
		"tempo":        b.Tempo,
		"beats":        beats,
	}
	if b.Repeat != RepeatNone {
		o["repeat"] = b.Repeat.String()
	}
	if len(b.Tuplets) > 0 {
		tuplets := make([]any, len(b.Tuplets))
		for i, g := range b.Tuplets {
			members := make([]any, len(g.Beats))
			for j, tb := range g.Beats {
				members[j] = string(tb.Beat)
			}
			tuplets[i] = Object{"id": string(g.ID), "normalCount": g.NormalCount, "tupletCount": g.TupletCount, "beats": members}
		}
		o["tuplets"] = tuplets
	}
	return o
}

// BarFromObject builds a bar and derives DurationsFit.
func BarFromObject(obj Object, stringsCount int, ids *IDSource) (Bar, error) {
	return barFromReader(objectReader{obj: obj, path: "bar"}, stringsCount, ids)
}

func barFromReader(r objectReader, stringsCount int, ids *IDSource) (Bar, error) {
	id, err := r.id(ids, false)
	if err != nil {
		return Bar{}, err
	}
	bar := Bar{ID: id}
	if bar.BeatsCount, _, err = r.int("beatsCount", true); err != nil {
		return Bar{}, err
	}
	if bar.BeatDuration, err = parseDurationField(r, "beatDuration"); err != nil {
		return Bar{}, err
	}
	if bar.Tempo, _, err = r.int("tempo", true); err != nil {
		return Bar{}, err
	}
	if rep, ok, err := r.string("repeat", false); err != nil {
		return Bar{}, err
	} else if ok {
		if bar.Repeat, err = ParseRepeatStatus(rep); err != nil {
			return Bar{}, err
		}
	}
	if err := bar.validateSignature(); err != nil {
		return Bar{}, fmt.Errorf("%s: %w", r.path, err)
	}
	err = r.each("beats", false, func(br objectReader) error {
		b, err := beatFromReader(br, stringsCount, ids)
		if err != nil {
			return err
		}
		bar.Beats = append(bar.Beats, b)
		return nil
	})
	if err != nil {
		return Bar{}, err
	}
	err = r.each("tuplets", false, func(tr objectReader) error {
		gid, err := tr.id(ids, false)
		if err != nil {
			return err
		}
		normal, _, err := tr.int("normalCount", true)
		if err != nil {
			return err
		}
		tuplet, _, err := tr.int("tupletCount", true)
		if err != nil {
			return err
		}
		refs, err := tr.list("beats", true)
		if err != nil {
			return err
		}
		var members []*Beat
		for _, ref := range refs {
			s, ok := ref.(string)
			i := bar.BeatIndex(ID(s))
			if !ok || i < 0 {
				return invalid(ErrInvalidTuplet, "%s: unknown beat reference %v", tr.path, ref)
			}
			members = append(members, &bar.Beats[i])
		}
		g, err := BuildTupletGroup(gid, members, normal, tuplet)
		if err != nil {
			return err
		}
		return bar.AddTuplet(g)
	})
	if err != nil {
		return Bar{}, err
	}
	bar.Refit()
	return bar, nil
}

// ToObject returns the plain object form of the track.
func (t *Track) ToObject() Object {
	bars := make([]any, len(t.Bars))
	for i := range t.Bars {
		bars[i] = t.Bars[i].ToObject()
	}
	tuning := make([]any, len(t.Guitar.Tuning))
	for i, n := range t.Guitar.Tuning {
		tuning[i] = PitchName(n)
	}
	return Object{
		"id":     string(t.ID),
		"name":   t.Name,
		"guitar": Object{"stringsCount": t.Guitar.StringsCount, "tuning": tuning},
		"bars":   bars,
	}
}

// TrackFromObject builds a track; the guitar is required.
func TrackFromObject(obj Object, ids *IDSource) (Track, error) {
	return trackFromReader(objectReader{obj: obj, path: "track"}, ids)
}

func trackFromReader(r objectReader, ids *IDSource) (Track, error) {
	id, err := r.id(ids, false)
	if err != nil {
		return Track{}, err
	}
	name, _, err := r.string("name", false)
	if err != nil {
		return Track{}, err
	}
	gobj, _, err := r.object("guitar", true)
	if err != nil {
		return Track{}, err
	}
	gr := objectReader{obj: gobj, path: r.path + ".guitar"}
	count, _, err := gr.int("stringsCount", true)
	if err != nil {
		return Track{}, err
	}
	rawTuning, err := gr.list("tuning", true)
	if err != nil {
		return Track{}, err
	}
	tuning := make([]midi.Note, 0, len(rawTuning))
	for _, v := range rawTuning {
		if s, ok := v.(string); ok {
			p, err := ParsePitch(s)
			if err != nil {
				return Track{}, fmt.Errorf("%s: %w", gr.path, err)
			}
			tuning = append(tuning, p)
			continue
		}
		f, ok := toFloat(v)
		if !ok || f < 0 || f > 127 || f != math.Trunc(f) {
			return Track{}, invalid(ErrInvalidField, "%s: invalid tuning pitch %v", gr.path, v)
		}
		tuning = append(tuning, midi.Note(f))
	}
	guitar, err := NewGuitar(count, tuning)
	if err != nil {
		return Track{}, fmt.Errorf("%s: %w", r.path, err)
	}
	t := Track{ID: id, Name: name, Guitar: guitar}
	err = r.each("bars", false, func(br objectReader) error {
		b, err := barFromReader(br, guitar.StringsCount, ids)
		if err != nil {
			return err
		}
		t.Bars = append(t.Bars, b)
		return nil
	})
	return t, err
}

// ToObject returns the plain object form of the score.
func (s *Score) ToObject() Object {
	tracks := make([]any, len(s.Tracks))
	for i := range s.Tracks {
		tracks[i] = s.Tracks[i].ToObject()
	}
	return Object{
		"id":       string(s.ID),
		"name":     s.Name,
		"artist":   s.Artist,
		"songName": s.SongName,
		"public":   s.Public,
		"tracks":   tracks,
	}
}

// ScoreFromObject validates and builds a score. id, artist, songName and
// public are required and never defaulted.
func ScoreFromObject(obj Object, ids *IDSource) (Score, error) {
	r := objectReader{obj: obj, path: "score"}
	var s Score
	var err error
	if s.ID, err = r.id(ids, true); err != nil {
		return Score{}, err
	}
	if s.Name, _, err = r.string("name", false); err != nil {
		return Score{}, err
	}
	if s.Artist, _, err = r.string("artist", true); err != nil {
		return Score{}, err
	}
	if s.SongName, _, err = r.string("songName", true); err != nil {
		return Score{}, err
	}
	if s.Public, _, err = r.bool("public", true); err != nil {
		return Score{}, err
	}
	err = r.each("tracks", false, func(tr objectReader) error {
		t, err := trackFromReader(tr, ids)
		if err != nil {
			return err
		}
		s.Tracks = append(s.Tracks, t)
		return nil
	})
	if err != nil {
		return Score{}, err
	}
	return s, nil
}
