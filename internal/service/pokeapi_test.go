package service

import (
	"errors"
	"strings"
	"testing"

	"lookup_bot/internal/adapter"
)

const pokeapiFixture = `{
  "id": 25,
  "name": "pikachu",
  "height": 4,
  "weight": 60,
  "types": [{"type": {"name": "electric"}}],
  "abilities": [
    {"ability": {"name": "static"}, "is_hidden": false},
    {"ability": {"name": "lightning-rod"}, "is_hidden": true}
  ],
  "stats": [
    {"base_stat": 35, "stat": {"name": "hp"}},
    {"base_stat": 90, "stat": {"name": "speed"}}
  ],
  "sprites": {
    "front_default": "https://sprites.example/25.png",
    "other": {"official-artwork": {"front_default": "https://art.example/25.png"}}
  }
}`

func TestPokeAPISearch(t *testing.T) {
	got, err := parsePokeAPISearch(response(200, pokeapiFixture))
	if err != nil {
		t.Fatalf("parsePokeAPISearch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].ID != "25" || got[0].Label != "Pikachu" || got[0].Hint != "#025" {
		t.Errorf("got %+v", got[0])
	}
}

func TestPokeAPIDetail(t *testing.T) {
	rec, err := parsePokeAPIDetail(response(200, pokeapiFixture), "25")
	if err != nil {
		t.Fatalf("parsePokeAPIDetail: %v", err)
	}

	if rec.Title != "Pikachu #025" {
		t.Errorf("got title %q", rec.Title)
	}
	if rec.Thumbnail != "https://art.example/25.png" {
		t.Errorf("got thumbnail %q, want official artwork", rec.Thumbnail)
	}

	fields := map[string]string{}
	for _, f := range rec.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Types"] != "Electric" {
		t.Errorf("got types %q", fields["Types"])
	}
	if fields["Height"] != "0.4 m" {
		t.Errorf("got height %q", fields["Height"])
	}
	if fields["Weight"] != "6.0 kg" {
		t.Errorf("got weight %q", fields["Weight"])
	}
	if fields["Abilities"] != "Static, Lightning rod (hidden)" {
		t.Errorf("got abilities %q", fields["Abilities"])
	}
	if !strings.Contains(fields["Base stats"], "Speed: 90") {
		t.Errorf("got stats %q", fields["Base stats"])
	}
}

func TestPokeAPINotFound(t *testing.T) {
	_, err := parsePokeAPISearch(response(404, "Not Found"))
	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestPokeAPINormalizeQuery(t *testing.T) {
	svc := NewPokeAPI()
	cases := map[string]string{
		"Pikachu":   "pikachu",
		" Mr Mime ": "mr-mime",
		"GIRATINA":  "giratina",
	}
	for in, want := range cases {
		if got := svc.NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
