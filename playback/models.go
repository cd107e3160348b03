// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"encoding/json"
	"time"

	xglog "github.com/ManuGH/spotifykit/internal/log"
	"github.com/ManuGH/spotifykit/webapi"
)

// DeviceType is the kind of hardware a Spotify Connect device runs on.
type DeviceType string

const (
	DeviceComputer   DeviceType = "Computer"
	DeviceSmartphone DeviceType = "Smartphone"
	DeviceSpeaker    DeviceType = "Speaker"
	DeviceCastVideo  DeviceType = "CastVideo"
	DeviceUnknown    DeviceType = "unknown"
)

// UnmarshalJSON maps device types this package does not know to
// DeviceUnknown instead of failing the whole response.
func (t *DeviceType) UnmarshalJSON(data []byte) error {
	v, err := webapi.DecodeEnum(data, "device type", DeviceComputer, DeviceSmartphone, DeviceSpeaker, DeviceCastVideo)
	if err != nil {
		var raw string
		if json.Unmarshal(data, &raw) != nil {
			return err
		}
		logger := xglog.WithComponent(component)
		logger.Debug().Str("device_type", raw).Msg("unknown device type")
		v = DeviceUnknown
	}
	*t = v
	return nil
}

// Device is a Spotify Connect player.
type Device struct {
	// ID is nil when the device does not expose one.
	ID            *string    `json:"id"`
	IsActive      bool       `json:"is_active"`
	IsRestricted  bool       `json:"is_restricted"`
	Name          string     `json:"name"`
	Type          DeviceType `json:"type"`
	VolumePercent *int       `json:"volume_percent"`
}

// Volume returns the volume on a linear 0..1 scale. ok is false when the
// device does not report one.
func (d *Device) Volume() (v float64, ok bool) {
	if d.VolumePercent == nil {
		return 0, false
	}
	return float64(*d.VolumePercent) / 100, true
}

// RepeatMode is what a player repeats once the current item ends.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatOne RepeatMode = "track"
	RepeatAll RepeatMode = "context"
)

func (m *RepeatMode) UnmarshalJSON(data []byte) (err error) {
	*m, err = webapi.DecodeEnum(data, "repeat mode", RepeatOff, RepeatOne, RepeatAll)
	return err
}

// Valid reports whether m is one of the known modes.
func (m RepeatMode) Valid() bool {
	switch m {
	case RepeatOff, RepeatOne, RepeatAll:
		return true
	}
	return false
}

// ContextType is the kind of collection an item is played from.
type ContextType string

const (
	ContextAlbum    ContextType = "album"
	ContextArtist   ContextType = "artist"
	ContextPlaylist ContextType = "playlist"
	ContextUnknown  ContextType = "unknown"
)

// UnmarshalJSON maps context kinds other than album, artist and playlist
// (liked songs, shows) to ContextUnknown.
func (t *ContextType) UnmarshalJSON(data []byte) error {
	v, err := webapi.DecodeEnum(data, "context type", ContextAlbum, ContextArtist, ContextPlaylist)
	if err != nil {
		var raw string
		if json.Unmarshal(data, &raw) != nil {
			return err
		}
		v = ContextUnknown
	}
	*t = v
	return nil
}

// Context identifies what the current item is played from.
type Context struct {
	Type         ContextType         `json:"type"`
	ExternalURLs webapi.ExternalURLs `json:"external_urls"`
	Href         string              `json:"href"`
	URI          string              `json:"uri"`
}

// State is the playback state of the user's active device. Device,
// RepeatMode and ShuffleState are nil for the currently-playing endpoint.
type State struct {
	Device       *Device       `json:"device,omitempty"`
	RepeatMode   *RepeatMode   `json:"repeat_state,omitempty"`
	ShuffleState *bool         `json:"shuffle_state,omitempty"`
	Context      *Context      `json:"context"`
	TimestampMS  int64         `json:"timestamp"`
	ProgressMS   *int          `json:"progress_ms"`
	IsPlaying    bool          `json:"is_playing"`
	Item         *webapi.Track `json:"item"`
}

// Timestamp is when the state was fetched, with millisecond precision.
func (s *State) Timestamp() time.Time {
	return time.UnixMilli(s.TimestampMS).UTC()
}

// Progress is the position in the current item. ok is false when nothing
// is playing.
func (s *State) Progress() (d time.Duration, ok bool) {
	if s.ProgressMS == nil {
		return 0, false
	}
	return time.Duration(*s.ProgressMS) * time.Millisecond, true
}

// Elapsed estimates the position at now, advancing Progress by the time
// since Timestamp while the item is playing.
func (s *State) Elapsed(now time.Time) time.Duration {
	p, ok := s.Progress()
	if !ok {
		return 0
	}
	if s.IsPlaying {
		if since := now.Sub(s.Timestamp()); since > 0 {
			p += since
		}
	}
	if s.Item != nil {
		if d := s.Item.Duration(); d > 0 && p > d {
			return d
		}
	}
	return p
}

// RecentTrack is one entry of the play history.
type RecentTrack struct {
	Track    webapi.Track `json:"track"`
	PlayedAt time.Time    `json:"played_at"`
	Context  *Context     `json:"context"`
}

type devicesEnvelope struct {
	Devices []Device `json:"devices"`
}
