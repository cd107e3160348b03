// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"strings"

	"golang.org/x/text/language"
)

// MarketFromToken asks the API to use the country of the token's user.
const MarketFromToken = "from_token"

// Country returns the ISO 3166-1 alpha-2 code of tag, or "" when tag has no
// confident region.
func Country(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	return region.String()
}

// Locale formats tag the way the browse endpoints expect, e.g. "es_MX".
func Locale(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return strings.ToLower(base.String()) + "_" + region.String()
}

// ParseMarket accepts a country code ("SE"), a locale ("sv-SE") or
// MarketFromToken and returns the value to send as market.
func ParseMarket(s string) (string, error) {
	if s == "" || strings.EqualFold(s, MarketFromToken) {
		return strings.ToLower(s), nil
	}
	if region, err := language.ParseRegion(s); err == nil {
		return region.String(), nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", err
	}
	return Country(tag), nil
}
