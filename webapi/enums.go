// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DecodeEnum decodes a JSON string into one of known. The raw value is tried
// first, then its lowercase, uppercase and capitalized forms, so "ARTIST",
// "artist" and "Artist" all decode to the same value.
func DecodeEnum[E ~string](data []byte, name string, known ...E) (E, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBadResponse, name, err)
	}
	for _, candidate := range []string{s, strings.ToLower(s), strings.ToUpper(s), cases.Title(language.Und).String(s)} {
		for _, k := range known {
			if string(k) == candidate {
				return k, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q is not a valid %s", ErrBadResponse, s, name)
}

// AlbumType classifies an album.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeAppearsOn   AlbumType = "appears_on"
	AlbumTypeCompilation AlbumType = "compilation"
)

func (t *AlbumType) UnmarshalJSON(data []byte) (err error) {
	*t, err = DecodeEnum(data, "album type", AlbumTypeAlbum, AlbumTypeSingle, AlbumTypeAppearsOn, AlbumTypeCompilation)
	return err
}

// SearchType is an item kind a search can return.
type SearchType string

const (
	SearchAlbum    SearchType = "album"
	SearchArtist   SearchType = "artist"
	SearchTrack    SearchType = "track"
	SearchPlaylist SearchType = "playlist"
)

func (t *SearchType) UnmarshalJSON(data []byte) (err error) {
	*t, err = DecodeEnum(data, "search type", SearchAlbum, SearchArtist, SearchTrack, SearchPlaylist)
	return err
}

// SeedType is the kind of a recommendation seed.
type SeedType string

const (
	SeedArtist SeedType = "artist"
	SeedTrack  SeedType = "track"
	SeedGenre  SeedType = "genre"
)

func (t *SeedType) UnmarshalJSON(data []byte) (err error) {
	*t, err = DecodeEnum(data, "seed type", SeedArtist, SeedTrack, SeedGenre)
	return err
}

// Product is a user's subscription level.
type Product string

const (
	ProductFree      Product = "free"
	ProductOpen      Product = "open"
	ProductPremium   Product = "premium"
	ProductUnlimited Product = "unlimited"
	ProductUnknown   Product = "unknown"
)

func (p *Product) UnmarshalJSON(data []byte) (err error) {
	*p, err = DecodeEnum(data, "product", ProductFree, ProductOpen, ProductPremium, ProductUnlimited, ProductUnknown)
	return err
}

// CopyrightType distinguishes the copyright (C) from the sound recording (P)
// performance copyright.
type CopyrightType string

const (
	CopyrightC CopyrightType = "C"
	CopyrightP CopyrightType = "P"
)

func (t *CopyrightType) UnmarshalJSON(data []byte) (err error) {
	*t, err = DecodeEnum(data, "copyright type", CopyrightC, CopyrightP)
	return err
}

// DatePrecision is how much of a release date is known.
type DatePrecision string

const (
	PrecisionYear  DatePrecision = "year"
	PrecisionMonth DatePrecision = "month"
	PrecisionDay   DatePrecision = "day"
)

func (p *DatePrecision) UnmarshalJSON(data []byte) (err error) {
	*p, err = DecodeEnum(data, "release date precision", PrecisionYear, PrecisionMonth, PrecisionDay)
	return err
}

// Layout returns the time layout matching the precision.
func (p DatePrecision) Layout() string {
	switch p {
	case PrecisionYear:
		return "2006"
	case PrecisionMonth:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}

// TimeRange is the window personalization endpoints compute affinity over.
type TimeRange string

const (
	LongTerm   TimeRange = "long_term"
	MediumTerm TimeRange = "medium_term"
	ShortTerm  TimeRange = "short_term"
)

// FollowKind is what Follow and IsFollowing operate on.
type FollowKind string

const (
	FollowArtist FollowKind = "artist"
	FollowUser   FollowKind = "user"
)
