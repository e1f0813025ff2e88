package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const anilistCharacterSearchQuery = `query ($search: String) {
  Page(page: 1, perPage: 15) {
    characters(search: $search, sort: SEARCH_MATCH) {
      id
      name { full }
      media(perPage: 1, sort: POPULARITY_DESC) {
        nodes { title { romaji english } }
      }
    }
  }
}`

const anilistCharacterDetailQuery = `query ($id: Int) {
  Character(id: $id) {
    id
    name { full native alternative }
    description(asHtml: false)
    image { large }
    favourites
    siteUrl
    media(perPage: 5, sort: POPULARITY_DESC) {
      nodes { title { romaji english } isAdult }
    }
  }
}`

// NewAniListCharacter builds the descriptor for AniList character lookup.
func NewAniListCharacter() *adapter.Descriptor {
	return &adapter.Descriptor{
		Name:           "character",
		SearchEndpoint: anilistEndpoint,
		DetailEndpoint: anilistEndpoint,
		PageSize:       15,
		SearchBody: func(query string) any {
			return map[string]any{
				"query":     anilistCharacterSearchQuery,
				"variables": map[string]any{"search": query},
			}
		},
		DetailBody: func(id string) any {
			n, _ := strconv.Atoi(id)
			return map[string]any{
				"query":     anilistCharacterDetailQuery,
				"variables": map[string]any{"id": n},
			}
		},
		ParseSearch: parseAniListCharacterSearch,
		ParseDetail: parseAniListCharacterDetail,
		BuildViews:  buildAniListViews,
	}
}

func parseAniListCharacterSearch(resp webclient.Response) ([]model.Candidate, error) {
	if err := anilistError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Data struct {
			Page struct {
				Characters []struct {
					ID   int `json:"id"`
					Name struct {
						Full string `json:"full"`
					} `json:"name"`
					Media struct {
						Nodes []struct {
							Title struct {
								Romaji  string `json:"romaji"`
								English string `json:"english"`
							} `json:"title"`
						} `json:"nodes"`
					} `json:"media"`
				} `json:"characters"`
			} `json:"Page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}

	var candidates []model.Candidate
	for _, c := range payload.Data.Page.Characters {
		hint := ""
		if len(c.Media.Nodes) > 0 {
			hint = c.Media.Nodes[0].Title.English
			if hint == "" {
				hint = c.Media.Nodes[0].Title.Romaji
			}
		}
		candidates = append(candidates, model.Candidate{
			ID:    strconv.Itoa(c.ID),
			Label: c.Name.Full,
			Hint:  hint,
		})
	}
	return candidates, nil
}

func parseAniListCharacterDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	if err := anilistError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Data struct {
			Character struct {
				ID   int `json:"id"`
				Name struct {
					Full        string   `json:"full"`
					Native      string   `json:"native"`
					Alternative []string `json:"alternative"`
				} `json:"name"`
				Description string `json:"description"`
				Image       struct {
					Large string `json:"large"`
				} `json:"image"`
				Favourites int    `json:"favourites"`
				SiteURL    string `json:"siteUrl"`
				Media      struct {
					Nodes []struct {
						Title struct {
							Romaji  string `json:"romaji"`
							English string `json:"english"`
						} `json:"title"`
						IsAdult bool `json:"isAdult"`
					} `json:"nodes"`
				} `json:"media"`
			} `json:"Character"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}
	c := payload.Data.Character
	if c.ID == 0 {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "id " + id}
	}

	fields := []model.Field{
		{Name: "Favourites", Value: strconv.Itoa(c.Favourites), Inline: true},
	}
	if c.Name.Native != "" {
		fields = append(fields, model.Field{Name: "Native", Value: c.Name.Native, Inline: true})
	}
	if len(c.Name.Alternative) > 0 {
		alt := strings.Join(c.Name.Alternative, ", ")
		if strings.TrimSpace(alt) != "" {
			fields = append(fields, model.Field{Name: "Also known as", Value: alt})
		}
	}

	var titles []string
	adult := false
	for _, n := range c.Media.Nodes {
		t := n.Title.English
		if t == "" {
			t = n.Title.Romaji
		}
		if t != "" {
			titles = append(titles, t)
		}
		// A character is gated when their best-known appearance is.
		if n.IsAdult {
			adult = true
		}
	}
	if len(titles) > 0 {
		fields = append(fields, model.Field{Name: "Appears in", Value: strings.Join(titles, ", ")})
	}

	var links []model.Link
	if c.SiteURL != "" {
		links = append(links, model.Link{Title: "AniList", URL: c.SiteURL})
	}

	return &model.DetailRecord{
		ID:          strconv.Itoa(c.ID),
		Title:       c.Name.Full,
		Description: adapter.CleanHTML(c.Description),
		Thumbnail:   c.Image.Large,
		Links:       links,
		Adult:       adult,
		Fields:      fields,
	}, nil
}
