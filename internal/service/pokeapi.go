package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const pokeapiBase = "https://pokeapi.co/api/v2"

// NewPokeAPI builds the descriptor for Pokédex lookup. PokéAPI has no search
// endpoint, so the query must be an exact species name or dex number; the
// single response doubles as search and detail payload.
func NewPokeAPI() *adapter.Descriptor {
	return &adapter.Descriptor{
		Name:           "pokedex",
		SearchEndpoint: pokeapiBase + "/pokemon/{query}",
		NormalizeQuery: func(query string) string {
			return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(query), " ", "-"))
		},
		ParseSearch: parsePokeAPISearch,
		ParseDetail: parsePokeAPIDetail,
		BuildViews:  buildPokeAPIViews,
	}
}

type pokeapiPokemon struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
		IsHidden bool `json:"is_hidden"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

func parsePokeAPIPokemon(resp webclient.Response) (*pokeapiPokemon, error) {
	if !resp.OK() {
		return nil, &adapter.NotFoundError{Code: resp.Status}
	}
	var p pokeapiPokemon
	if err := json.Unmarshal(resp.Body, &p); err != nil || p.ID == 0 {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}
	return &p, nil
}

func parsePokeAPISearch(resp webclient.Response) ([]model.Candidate, error) {
	p, err := parsePokeAPIPokemon(resp)
	if err != nil {
		return nil, err
	}
	return []model.Candidate{{
		ID:    strconv.Itoa(p.ID),
		Label: titleCase(p.Name),
		Hint:  fmt.Sprintf("#%03d", p.ID),
	}}, nil
}

func parsePokeAPIDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	p, err := parsePokeAPIPokemon(resp)
	if err != nil {
		return nil, err
	}

	var types []string
	for _, t := range p.Types {
		types = append(types, titleCase(t.Type.Name))
	}
	var abilities []string
	for _, a := range p.Abilities {
		name := titleCase(strings.ReplaceAll(a.Ability.Name, "-", " "))
		if a.IsHidden {
			name += " (hidden)"
		}
		abilities = append(abilities, name)
	}

	fields := []model.Field{
		{Name: "Types", Value: adapter.OrNA(strings.Join(types, ", ")), Inline: true},
		{Name: "Height", Value: fmt.Sprintf("%.1f m", float64(p.Height)/10), Inline: true},
		{Name: "Weight", Value: fmt.Sprintf("%.1f kg", float64(p.Weight)/10), Inline: true},
		{Name: "Abilities", Value: adapter.OrNA(strings.Join(abilities, ", "))},
	}
	if len(p.Stats) > 0 {
		var b strings.Builder
		for _, s := range p.Stats {
			fmt.Fprintf(&b, "%s: %d\n", titleCase(strings.ReplaceAll(s.Stat.Name, "-", " ")), s.BaseStat)
		}
		fields = append(fields, model.Field{Name: "Base stats", Value: strings.TrimRight(b.String(), "\n")})
	}

	thumb := p.Sprites.Other.OfficialArtwork.FrontDefault
	if thumb == "" {
		thumb = p.Sprites.FrontDefault
	}

	return &model.DetailRecord{
		ID:        strconv.Itoa(p.ID),
		Title:     fmt.Sprintf("%s #%03d", titleCase(p.Name), p.ID),
		Thumbnail: thumb,
		Links: []model.Link{
			{Title: "Pokédex", URL: "https://www.pokemon.com/us/pokedex/" + p.Name},
		},
		Fields: fields,
	}, nil
}

func buildPokeAPIViews(rec *model.DetailRecord) model.PageSequence {
	page := model.RenderedView{
		Title:    rec.Title,
		Fields:   rec.Fields,
		ThumbURL: rec.Thumbnail,
	}
	if len(rec.Links) > 0 {
		page.URL = rec.Links[0].URL
	}
	return model.PageSequence{page}
}
