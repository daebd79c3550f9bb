package model

import (
	"reflect"
	"testing"
)

func TestArtistNames(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  string
	}{
		{"single", []string{"Artist X"}, "Artist X"},
		{"multiple", []string{"Artist X", "Artist Y"}, "Artist X, Artist Y"},
		{"skips empties", []string{"", "Artist X", "  "}, "Artist X"},
		{"all empty", []string{"", "  "}, UnknownArtist},
		{"nil", nil, UnknownArtist},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ArtistNames(tc.input); got != tc.want {
				t.Fatalf("ArtistNames(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestLibrarySortedByID(t *testing.T) {
	lib := Library{
		"p3": {ID: "p3", Name: "C"},
		"p1": {ID: "p1", Name: "A"},
		"p2": {ID: "p2", Name: "B"},
	}

	var ids []string
	for _, p := range lib.SortedByID() {
		ids = append(ids, p.ID)
	}
	if !reflect.DeepEqual(ids, []string{"p1", "p2", "p3"}) {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestTrackKeyIgnoresID(t *testing.T) {
	a := Track{Name: "Song A", Artist: "Artist X", ID: "id-1"}
	b := Track{Name: "Song A", Artist: "Artist X", ID: "id-2"}
	if a.Key() != b.Key() {
		t.Fatalf("tracks with identical name and artist should share a key")
	}
	if a.String() != "Song A by Artist X" {
		t.Fatalf("unexpected track rendering: %q", a.String())
	}
}
