// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncoder_Encode(t *testing.T) {
	n := 3
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{name: "nil", in: nil},
		{name: "nil pointer", in: (*int)(nil)},
		{name: "unsupported", in: struct{}{}},
		{name: "string with spaces", in: "daft punk", want: "daft+punk", wantOK: true},
		{name: "bool", in: true, want: "true", wantOK: true},
		{name: "int", in: 42, want: "42", wantOK: true},
		{name: "uint", in: uint8(7), want: "7", wantOK: true},
		{name: "float", in: 0.25, want: "0.25", wantOK: true},
		{name: "pointer", in: &n, want: "3", wantOK: true},
		{name: "named string", in: AlbumTypeSingle, want: "single", wantOK: true},
		{name: "strings", in: []string{"a", "b c"}, want: "a,b+c", wantOK: true},
		{name: "named strings", in: []SearchType{SearchAlbum, SearchTrack}, want: "album,track", wantOK: true},
		{name: "ints", in: []int{1, 2}, want: "1,2", wantOK: true},
		{name: "duration", in: 1500 * time.Millisecond, want: "1500", wantOK: true},
		{name: "time in utc", in: time.Date(2024, 1, 2, 4, 4, 5, 0, time.FixedZone("CET", 3600)), want: "2024-01-02T03:04:05", wantOK: true},
		{name: "range", in: Range[int]{From: 1990, To: 1999}, want: "1990-1999", wantOK: true},
		{name: "collapsed range", in: Range[int]{From: 2000, To: 2000}, want: "2000", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultEncoder.Encode(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncoder_PreserveSeconds(t *testing.T) {
	enc := DefaultEncoder
	enc.PreserveSeconds = true
	got, ok := enc.Encode(1500 * time.Millisecond)
	assert.True(t, ok)
	assert.Equal(t, "1.5", got)
}

func TestEncoder_CustomSeparators(t *testing.T) {
	enc := Encoder{ListSeparator: "|", RangeSeparator: "..", DateLayout: time.RFC3339}
	got, _ := enc.Encode([]string{"a b", "c"})
	assert.Equal(t, "a b|c", got, "no space separator leaves spaces alone")

	got, _ = enc.Encode(Range[float64]{From: 0.5, To: 1})
	assert.Equal(t, "0.5..1", got)
}

func TestDateRange_EncodeQuery(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2020", DateRange{From: from, To: to, Layout: "2006"}.EncodeQuery(DefaultEncoder))
	assert.Equal(t, "2020-01-01T00:00:00", DateRange{From: from, To: from}.EncodeQuery(DefaultEncoder))
	assert.Equal(t, "2020-01-2020-12", DateRange{From: from, To: to, Layout: "2006-01"}.EncodeQuery(DefaultEncoder))
}
