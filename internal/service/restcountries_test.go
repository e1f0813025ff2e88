package service

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
)

const restcountriesFixture = `[
  {
    "name": {"common": "Germany", "official": "Federal Republic of Germany"},
    "cca3": "DEU",
    "capital": ["Berlin"],
    "region": "Europe",
    "subregion": "Western Europe",
    "population": 83240525,
    "area": 357114,
    "currencies": {"EUR": {"name": "Euro", "symbol": "€"}},
    "languages": {"deu": "German"},
    "tld": [".de"],
    "flags": {"png": "https://flagcdn.com/w320/de.png"},
    "maps": {"googleMaps": "https://goo.gl/maps/mD9FBMq1nvXUBrkv6"}
  },
  {
    "name": {"common": "Georgia", "official": "Georgia"},
    "cca3": "GEO",
    "capital": ["Tbilisi"],
    "region": "Asia",
    "population": 3714000,
    "area": 69700,
    "flags": {"png": "https://flagcdn.com/w320/ge.png"},
    "maps": {"googleMaps": ""}
  }
]`

func TestRestCountriesSearch(t *testing.T) {
	got, err := parseRestCountriesSearch(response(200, restcountriesFixture))
	if err != nil {
		t.Fatalf("parseRestCountriesSearch: %v", err)
	}
	want := []model.Candidate{
		{ID: "DEU", Label: "Germany", Hint: "Europe"},
		{ID: "GEO", Label: "Georgia", Hint: "Asia"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestRestCountriesDetail(t *testing.T) {
	rec, err := parseRestCountriesDetail(response(200, restcountriesFixture), "DEU")
	if err != nil {
		t.Fatalf("parseRestCountriesDetail: %v", err)
	}

	if rec.Title != "Germany" || rec.Description != "Federal Republic of Germany" {
		t.Errorf("got %q / %q", rec.Title, rec.Description)
	}

	fields := map[string]string{}
	for _, f := range rec.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Capital"] != "Berlin" {
		t.Errorf("got capital %q", fields["Capital"])
	}
	if fields["Region"] != "Europe, Western Europe" {
		t.Errorf("got region %q", fields["Region"])
	}
	if fields["Population"] != "83,240,525" {
		t.Errorf("got population %q", fields["Population"])
	}
	if fields["Currencies"] != "Euro (€)" {
		t.Errorf("got currencies %q", fields["Currencies"])
	}
	if fields["Languages"] != "German" {
		t.Errorf("got languages %q", fields["Languages"])
	}
}

func TestRestCountriesDetailMissingData(t *testing.T) {
	rec, err := parseRestCountriesDetail(response(200, restcountriesFixture), "GEO")
	if err != nil {
		t.Fatalf("parseRestCountriesDetail: %v", err)
	}
	fields := map[string]string{}
	for _, f := range rec.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Currencies"] != "N/A" {
		t.Errorf("got currencies %q, want N/A", fields["Currencies"])
	}
	if fields["Region"] != "Asia" {
		t.Errorf("got region %q", fields["Region"])
	}
	if len(rec.Links) != 0 {
		t.Errorf("got links %v, want none", rec.Links)
	}
}

func TestRestCountriesDetailUnknownCode(t *testing.T) {
	_, err := parseRestCountriesDetail(response(200, restcountriesFixture), "FRA")
	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestRestCountriesNotFound(t *testing.T) {
	_, err := parseRestCountriesSearch(response(404, `{"status": 404, "message": "Not Found"}`))
	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestFormatPopulation(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		83240525: "83,240,525",
	}
	for n, want := range cases {
		if got := formatPopulation(n); got != want {
			t.Errorf("formatPopulation(%d) = %q, want %q", n, got, want)
		}
	}
}
