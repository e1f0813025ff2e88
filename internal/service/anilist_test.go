package service

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
)

const anilistSearchFixture = `{
  "data": {
    "Page": {
      "media": [
        {
          "id": 101922,
          "title": {"romaji": "Kimetsu no Yaiba", "english": "Demon Slayer: Kimetsu no Yaiba"},
          "format": "TV",
          "startDate": {"year": 2019, "month": 4, "day": 6}
        },
        {
          "id": 112151,
          "title": {"romaji": "Kimetsu Gakuen Monogatari", "english": ""},
          "format": "ONE_SHOT",
          "startDate": {"year": null, "month": null, "day": null}
        }
      ]
    }
  }
}`

func TestAniListSearch(t *testing.T) {
	got, err := parseAniListSearch(response(200, anilistSearchFixture))
	if err != nil {
		t.Fatalf("parseAniListSearch: %v", err)
	}

	want := []model.Candidate{
		{ID: "101922", Label: "Demon Slayer: Kimetsu no Yaiba", Hint: "TV, 2019", SortDate: 1554508800},
		{ID: "112151", Label: "Kimetsu Gakuen Monogatari", Hint: "ONE_SHOT"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestAniListSearchError(t *testing.T) {
	body := `{"errors": [{"message": "Not Found.", "status": 404}], "data": null}`
	_, err := parseAniListSearch(response(404, body))

	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if nf.Code != 404 {
		t.Errorf("got code %d, want 404", nf.Code)
	}
}

const anilistDetailFixture = `{
  "data": {
    "Media": {
      "id": 101922,
      "title": {"romaji": "Kimetsu no Yaiba", "english": "Demon Slayer: Kimetsu no Yaiba", "native": "鬼滅の刃"},
      "description": "It is the Taisho Period in Japan.<br><br><i>Note: adapted from the manga.</i>",
      "coverImage": {"extraLarge": "https://img.example/xl.png", "large": "https://img.example/l.png"},
      "bannerImage": "https://img.example/banner.png",
      "isAdult": false,
      "averageScore": 83,
      "status": "FINISHED",
      "episodes": 26,
      "chapters": null,
      "volumes": null,
      "genres": ["Action", "Fantasy"],
      "siteUrl": "https://anilist.co/anime/101922",
      "startDate": {"year": 2019, "month": 4, "day": 6}
    }
  }
}`

func TestAniListDetail(t *testing.T) {
	rec, err := parseAniListDetail(response(200, anilistDetailFixture), "101922")
	if err != nil {
		t.Fatalf("parseAniListDetail: %v", err)
	}

	if rec.Title != "Demon Slayer: Kimetsu no Yaiba" {
		t.Errorf("got title %q", rec.Title)
	}
	if rec.Adult {
		t.Error("record flagged adult")
	}
	if rec.Thumbnail != "https://img.example/xl.png" {
		t.Errorf("got thumbnail %q, want extraLarge cover", rec.Thumbnail)
	}
	if want := "It is the Taisho Period in Japan.\n\n_Note: adapted from the manga._"; rec.Description != want {
		t.Errorf("got description %q, want %q", rec.Description, want)
	}

	fields := map[string]string{}
	for _, f := range rec.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Status"] != "Finished" {
		t.Errorf("got status %q", fields["Status"])
	}
	if fields["Score"] != "83" {
		t.Errorf("got score %q", fields["Score"])
	}
	if fields["Episodes"] != "26" {
		t.Errorf("got episodes %q", fields["Episodes"])
	}
	if _, ok := fields["Chapters"]; ok {
		t.Error("chapters field present for an anime record")
	}
}

func TestAniListDetailTitleFallback(t *testing.T) {
	body := `{"data": {"Media": {"id": 7, "title": {"romaji": "Romaji Only", "english": "", "native": "ネイティブ"}}}}`
	rec, err := parseAniListDetail(response(200, body), "7")
	if err != nil {
		t.Fatalf("parseAniListDetail: %v", err)
	}
	if rec.Title != "Romaji Only" {
		t.Errorf("got title %q, want romaji fallback", rec.Title)
	}
}

func TestAniListDetailMissing(t *testing.T) {
	_, err := parseAniListDetail(response(200, `{"data": {"Media": null}}`), "1")
	var nf *adapter.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestAniListCharacterSearch(t *testing.T) {
	body := `{
  "data": {
    "Page": {
      "characters": [
        {
          "id": 127216,
          "name": {"full": "Nezuko Kamado"},
          "media": {"nodes": [{"title": {"romaji": "Kimetsu no Yaiba", "english": "Demon Slayer: Kimetsu no Yaiba"}}]}
        }
      ]
    }
  }
}`
	got, err := parseAniListCharacterSearch(response(200, body))
	if err != nil {
		t.Fatalf("parseAniListCharacterSearch: %v", err)
	}
	want := []model.Candidate{
		{ID: "127216", Label: "Nezuko Kamado", Hint: "Demon Slayer: Kimetsu no Yaiba"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestAniListCharacterAdultPropagation(t *testing.T) {
	body := `{
  "data": {
    "Character": {
      "id": 9,
      "name": {"full": "Someone"},
      "description": "",
      "image": {"large": ""},
      "favourites": 12,
      "siteUrl": "https://anilist.co/character/9",
      "media": {"nodes": [{"title": {"romaji": "R18 Title"}, "isAdult": true}]}
    }
  }
}`
	rec, err := parseAniListCharacterDetail(response(200, body), "9")
	if err != nil {
		t.Fatalf("parseAniListCharacterDetail: %v", err)
	}
	if !rec.Adult {
		t.Error("character from adult media not flagged")
	}
}

func TestAniListSearchBody(t *testing.T) {
	svc := NewAniList("ANIME")
	body, ok := svc.SearchBody("cowboy bebop").(map[string]any)
	if !ok {
		t.Fatal("search body is not a map")
	}
	vars, _ := body["variables"].(map[string]any)
	if vars["search"] != "cowboy bebop" || vars["type"] != "ANIME" {
		t.Errorf("got variables %v", vars)
	}
}
