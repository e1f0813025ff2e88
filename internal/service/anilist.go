// Package service registers the remote services the bot can query. Each
// service contributes a descriptor plus total parsers; the pipeline in
// internal/adapter does the rest.
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

const anilistEndpoint = "https://graphql.anilist.co"

const anilistSearchQuery = `query ($search: String, $type: MediaType) {
  Page(page: 1, perPage: 15) {
    media(search: $search, type: $type, sort: SEARCH_MATCH) {
      id
      title { romaji english }
      format
      startDate { year month day }
    }
  }
}`

const anilistDetailQuery = `query ($id: Int) {
  Media(id: $id) {
    id
    title { romaji english native }
    description(asHtml: false)
    coverImage { extraLarge large }
    bannerImage
    isAdult
    averageScore
    status
    episodes
    chapters
    volumes
    genres
    siteUrl
    startDate { year month day }
  }
}`

type anilistDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d anilistDate) epoch() int64 {
	if d.Year == 0 {
		return 0
	}
	month, day := d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return adapter.ParseDate(fmt.Sprintf("%04d-%02d-%02d", d.Year, month, day))
}

type anilistErrors struct {
	Errors []struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"errors"`
}

// NewAniList builds the descriptor for AniList media lookup. mediaType is
// "ANIME" or "MANGA".
func NewAniList(mediaType string) *adapter.Descriptor {
	name := "media/" + strings.ToLower(mediaType)
	return &adapter.Descriptor{
		Name:           name,
		SearchEndpoint: anilistEndpoint,
		DetailEndpoint: anilistEndpoint,
		PageSize:       15,
		SearchBody: func(query string) any {
			return map[string]any{
				"query":     anilistSearchQuery,
				"variables": map[string]any{"search": query, "type": mediaType},
			}
		},
		DetailBody: func(id string) any {
			n, _ := strconv.Atoi(id)
			return map[string]any{
				"query":     anilistDetailQuery,
				"variables": map[string]any{"id": n},
			}
		},
		ParseSearch: parseAniListSearch,
		ParseDetail: parseAniListDetail,
		BuildViews:  buildAniListViews,
	}
}

func anilistError(resp webclient.Response) error {
	var e anilistErrors
	if err := json.Unmarshal(resp.Body, &e); err == nil && len(e.Errors) > 0 {
		return &adapter.NotFoundError{Code: e.Errors[0].Status, Message: e.Errors[0].Message}
	}
	if !resp.OK() {
		return &adapter.NotFoundError{Code: resp.Status}
	}
	return nil
}

func parseAniListSearch(resp webclient.Response) ([]model.Candidate, error) {
	if err := anilistError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Data struct {
			Page struct {
				Media []struct {
					ID    int `json:"id"`
					Title struct {
						Romaji  string `json:"romaji"`
						English string `json:"english"`
					} `json:"title"`
					Format    string      `json:"format"`
					StartDate anilistDate `json:"startDate"`
				} `json:"media"`
			} `json:"Page"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}

	var candidates []model.Candidate
	for _, m := range payload.Data.Page.Media {
		label := m.Title.English
		if label == "" {
			label = m.Title.Romaji
		}
		hint := strings.TrimSpace(m.Format)
		if m.StartDate.Year != 0 {
			if hint != "" {
				hint += ", "
			}
			hint += strconv.Itoa(m.StartDate.Year)
		}
		candidates = append(candidates, model.Candidate{
			ID:       strconv.Itoa(m.ID),
			Label:    label,
			Hint:     hint,
			SortDate: m.StartDate.epoch(),
		})
	}
	return candidates, nil
}

func parseAniListDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	if err := anilistError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Data struct {
			Media struct {
				ID    int `json:"id"`
				Title struct {
					Romaji  string `json:"romaji"`
					English string `json:"english"`
					Native  string `json:"native"`
				} `json:"title"`
				Description string `json:"description"`
				CoverImage  struct {
					ExtraLarge string `json:"extraLarge"`
					Large      string `json:"large"`
				} `json:"coverImage"`
				BannerImage  string      `json:"bannerImage"`
				IsAdult      bool        `json:"isAdult"`
				AverageScore *float64    `json:"averageScore"`
				Status       string      `json:"status"`
				Episodes     int         `json:"episodes"`
				Chapters     int         `json:"chapters"`
				Volumes      int         `json:"volumes"`
				Genres       []string    `json:"genres"`
				SiteURL      string      `json:"siteUrl"`
				StartDate    anilistDate `json:"startDate"`
			} `json:"Media"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}
	m := payload.Data.Media
	if m.ID == 0 {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "id " + id}
	}

	// Title fallback chain: english, romaji, native.
	title := m.Title.English
	if title == "" {
		title = m.Title.Romaji
	}
	if title == "" {
		title = m.Title.Native
	}

	score := adapter.Score{}
	if m.AverageScore != nil {
		score = adapter.NewScore(*m.AverageScore)
	}

	thumb := m.CoverImage.ExtraLarge
	if thumb == "" {
		thumb = m.CoverImage.Large
	}

	fields := []model.Field{
		{Name: "Status", Value: adapter.OrNA(titleCase(m.Status)), Inline: true},
		{Name: "Score", Value: score.String(), Inline: true},
	}
	if m.Episodes > 0 {
		fields = append(fields, model.Field{Name: "Episodes", Value: strconv.Itoa(m.Episodes), Inline: true})
	}
	if m.Chapters > 0 {
		fields = append(fields, model.Field{Name: "Chapters", Value: strconv.Itoa(m.Chapters), Inline: true})
	}
	if m.Volumes > 0 {
		fields = append(fields, model.Field{Name: "Volumes", Value: strconv.Itoa(m.Volumes), Inline: true})
	}
	if len(m.Genres) > 0 {
		fields = append(fields, model.Field{Name: "Genres", Value: strings.Join(m.Genres, ", ")})
	}

	var links []model.Link
	if m.SiteURL != "" {
		links = append(links, model.Link{Title: "AniList", URL: m.SiteURL})
	}

	return &model.DetailRecord{
		ID:          strconv.Itoa(m.ID),
		Title:       title,
		Description: adapter.CleanHTML(m.Description),
		Thumbnail:   thumb,
		Banner:      m.BannerImage,
		Links:       links,
		Adult:       m.IsAdult,
		Fields:      fields,
	}, nil
}

func buildAniListViews(rec *model.DetailRecord) model.PageSequence {
	page := model.RenderedView{
		Title:    rec.Title,
		Body:     adapter.Truncate(rec.Description, 1500),
		Fields:   rec.Fields,
		ThumbURL: rec.Thumbnail,
		ImageURL: rec.Banner,
	}
	if len(rec.Links) > 0 {
		page.URL = rec.Links[0].URL
	}
	return model.PageSequence{page}
}

func titleCase(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
