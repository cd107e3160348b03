// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Pitch is a key in standard pitch class notation. PitchUnknown means no key
// was detected.
type Pitch int

const (
	PitchUnknown Pitch = iota - 1
	PitchC
	PitchCSharp
	PitchD
	PitchDSharp
	PitchE
	PitchF
	PitchFSharp
	PitchG
	PitchGSharp
	PitchA
	PitchASharp
	PitchB
)

var pitchNames = [...]string{"C", "C♯/D♭", "D", "D♯/E♭", "E", "F", "F♯/G♭", "G", "G♯/A♭", "A", "A♯/B♭", "B"}

func (p Pitch) String() string {
	if p < PitchC || p > PitchB {
		return "unknown"
	}
	return pitchNames[p]
}

func (p *Pitch) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: pitch: %w", ErrBadResponse, err)
	}
	if n < int(PitchUnknown) || n > int(PitchB) {
		return fmt.Errorf("%w: %d is not a valid pitch", ErrBadResponse, n)
	}
	*p = Pitch(n)
	return nil
}

// Mode is the modality of a track.
type Mode int

const (
	ModeMinor Mode = 0
	ModeMajor Mode = 1
)

func (m Mode) String() string {
	if m == ModeMajor {
		return "major"
	}
	return "minor"
}

// AudioFeatures are the acoustic attributes of a track.
type AudioFeatures struct {
	Acousticness     float64 `json:"acousticness"`
	AnalysisURL      string  `json:"analysis_url"`
	Danceability     float64 `json:"danceability"`
	DurationMS       int     `json:"duration_ms"`
	Energy           float64 `json:"energy"`
	ID               string  `json:"id"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              Pitch   `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             Mode    `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	TrackHref        string  `json:"track_href"`
	Type             string  `json:"type"`
	URI              string  `json:"uri"`
	Valence          float64 `json:"valence"`
}

// Duration converts duration_ms.
func (f *AudioFeatures) Duration() time.Duration {
	return time.Duration(f.DurationMS) * time.Millisecond
}

// Seed is the seed object of a recommendations response.
type Seed struct {
	AfterFilteringSize int      `json:"afterFilteringSize"`
	AfterRelinkingSize int      `json:"afterRelinkingSize"`
	Href               *string  `json:"href"`
	ID                 string   `json:"id"`
	InitialPoolSize    int      `json:"initialPoolSize"`
	Type               SeedType `json:"type"`
}

// Recommendations are tracks generated from seeds.
type Recommendations struct {
	Seeds  []Seed  `json:"seeds"`
	Tracks []Track `json:"tracks"`
}

// Seeds are the inputs of Recommendations. At most five in total.
type Seeds struct {
	Artists []string
	Tracks  []string
	Genres  []string
}

func (s Seeds) count() int { return len(s.Artists) + len(s.Tracks) + len(s.Genres) }

// Attribute is a tunable track attribute of Recommendations.
type Attribute string

const (
	AttrAcousticness     Attribute = "acousticness"
	AttrDanceability     Attribute = "danceability"
	AttrDurationMS       Attribute = "duration_ms"
	AttrEnergy           Attribute = "energy"
	AttrInstrumentalness Attribute = "instrumentalness"
	AttrKey              Attribute = "key"
	AttrLiveness         Attribute = "liveness"
	AttrLoudness         Attribute = "loudness"
	AttrMode             Attribute = "mode"
	AttrPopularity       Attribute = "popularity"
	AttrSpeechiness      Attribute = "speechiness"
	AttrTempo            Attribute = "tempo"
	AttrTimeSignature    Attribute = "time_signature"
	AttrValence          Attribute = "valence"
)

// TrackAttribute bounds or targets one attribute. Nil bounds are not sent.
type TrackAttribute struct {
	Attribute Attribute
	Min       *float64
	Max       *float64
	Target    *float64
}

// Tune starts a TrackAttribute for a.
func Tune(a Attribute) TrackAttribute { return TrackAttribute{Attribute: a} }

func (t TrackAttribute) WithMin(v float64) TrackAttribute    { t.Min = &v; return t }
func (t TrackAttribute) WithMax(v float64) TrackAttribute    { t.Max = &v; return t }
func (t TrackAttribute) WithTarget(v float64) TrackAttribute { t.Target = &v; return t }

// attributeParams keys the attributes by name; a later entry for the same
// attribute replaces an earlier one.
func attributeParams(attrs []TrackAttribute, params map[string]any) {
	byKey := make(map[Attribute]TrackAttribute, len(attrs))
	for _, a := range attrs {
		byKey[a.Attribute] = a
	}
	for key, a := range byKey {
		if a.Min != nil {
			params[prefixMin+string(key)] = formatAttr(*a.Min)
		}
		if a.Max != nil {
			params[prefixMax+string(key)] = formatAttr(*a.Max)
		}
		if a.Target != nil {
			params[prefixTarget+string(key)] = formatAttr(*a.Target)
		}
	}
}

func formatAttr(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
