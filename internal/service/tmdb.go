package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const (
	tmdbBase      = "https://api.themoviedb.org/3"
	tmdbImageBase = "https://image.tmdb.org/t/p/w500"
	tmdbSiteBase  = "https://www.themoviedb.org"

	tmdbCastPerPage = 10
)

type tmdbCastMember struct {
	Name      string
	Character string
}

// NewTMDB builds the descriptor for a TMDB lookup. kind is "movie" or "tv".
func NewTMDB(kind, apiKey string) *adapter.Descriptor {
	params := url.Values{"api_key": {apiKey}}
	return &adapter.Descriptor{
		Name:           kind,
		SearchEndpoint: tmdbBase + "/search/" + kind + "?query={query}",
		DetailEndpoint: tmdbBase + "/" + kind + "/{id}?append_to_response=credits",
		Params:         params,
		PageSize:       15,
		DropdownPager:  true,
		ParseSearch: func(resp webclient.Response) ([]model.Candidate, error) {
			return parseTMDBSearch(resp, kind)
		},
		ParseDetail: func(resp webclient.Response, id string) (*model.DetailRecord, error) {
			return parseTMDBDetail(resp, id, kind)
		},
		BuildViews: buildTMDBViews,
	}
}

func tmdbError(resp webclient.Response) error {
	if resp.OK() {
		return nil
	}
	var e struct {
		StatusMessage string `json:"status_message"`
	}
	_ = json.Unmarshal(resp.Body, &e)
	return &adapter.NotFoundError{Code: resp.Status, Message: e.StatusMessage}
}

func parseTMDBSearch(resp webclient.Response, kind string) ([]model.Candidate, error) {
	if err := tmdbError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Results []struct {
			ID           int    `json:"id"`
			Title        string `json:"title"`
			Name         string `json:"name"`
			ReleaseDate  string `json:"release_date"`
			FirstAirDate string `json:"first_air_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}

	var candidates []model.Candidate
	for _, r := range payload.Results {
		label := r.Title
		date := r.ReleaseDate
		if kind == "tv" {
			label = r.Name
			date = r.FirstAirDate
		}
		candidates = append(candidates, model.Candidate{
			ID:       strconv.Itoa(r.ID),
			Label:    label,
			Hint:     adapter.Year(adapter.ParseDate(date)),
			SortDate: adapter.ParseDate(date),
		})
	}
	return candidates, nil
}

func parseTMDBDetail(resp webclient.Response, id, kind string) (*model.DetailRecord, error) {
	if err := tmdbError(resp); err != nil {
		return nil, err
	}
	var payload struct {
		ID               int     `json:"id"`
		Title            string  `json:"title"`
		Name             string  `json:"name"`
		Overview         string  `json:"overview"`
		PosterPath       string  `json:"poster_path"`
		BackdropPath     string  `json:"backdrop_path"`
		Adult            bool    `json:"adult"`
		VoteAverage      float64 `json:"vote_average"`
		VoteCount        int     `json:"vote_count"`
		Runtime          int     `json:"runtime"`
		ReleaseDate      string  `json:"release_date"`
		FirstAirDate     string  `json:"first_air_date"`
		NumberOfSeasons  int     `json:"number_of_seasons"`
		NumberOfEpisodes int     `json:"number_of_episodes"`
		Status           string  `json:"status"`
		Homepage         string  `json:"homepage"`
		Genres           []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Credits struct {
			Cast []struct {
				Name      string `json:"name"`
				Character string `json:"character"`
			} `json:"cast"`
		} `json:"credits"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}
	if payload.ID == 0 {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "id " + id}
	}

	title := payload.Title
	date := payload.ReleaseDate
	if kind == "tv" {
		title = payload.Name
		date = payload.FirstAirDate
	}
	if year := adapter.Year(adapter.ParseDate(date)); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}

	score := adapter.Score{}
	if payload.VoteCount > 0 {
		score = adapter.NewScore(payload.VoteAverage)
	}

	fields := []model.Field{
		{Name: "Rating", Value: score.String(), Inline: true},
		{Name: "Status", Value: adapter.OrNA(payload.Status), Inline: true},
	}
	if payload.Runtime > 0 {
		fields = append(fields, model.Field{Name: "Runtime", Value: fmt.Sprintf("%d min", payload.Runtime), Inline: true})
	}
	if kind == "tv" && payload.NumberOfSeasons > 0 {
		fields = append(fields, model.Field{
			Name:   "Seasons",
			Value:  fmt.Sprintf("%d (%d episodes)", payload.NumberOfSeasons, payload.NumberOfEpisodes),
			Inline: true,
		})
	}
	if len(payload.Genres) > 0 {
		names := make([]string, 0, len(payload.Genres))
		for _, g := range payload.Genres {
			names = append(names, g.Name)
		}
		fields = append(fields, model.Field{Name: "Genres", Value: strings.Join(names, ", ")})
	}

	links := []model.Link{
		{Title: "TMDB", URL: fmt.Sprintf("%s/%s/%d", tmdbSiteBase, kind, payload.ID)},
	}
	if payload.Homepage != "" {
		links = append(links, model.Link{Title: "Homepage", URL: payload.Homepage})
	}

	var cast []tmdbCastMember
	for _, c := range payload.Credits.Cast {
		cast = append(cast, tmdbCastMember{Name: c.Name, Character: c.Character})
	}

	var thumb, banner string
	if payload.PosterPath != "" {
		thumb = tmdbImageBase + payload.PosterPath
	}
	if payload.BackdropPath != "" {
		banner = tmdbImageBase + payload.BackdropPath
	}

	return &model.DetailRecord{
		ID:          strconv.Itoa(payload.ID),
		Title:       title,
		Description: payload.Overview,
		Thumbnail:   thumb,
		Banner:      banner,
		Links:       links,
		Adult:       payload.Adult,
		Fields:      fields,
		Extra:       cast,
	}, nil
}

// buildTMDBViews emits the detail page followed by cast pages, ten members
// per page.
func buildTMDBViews(rec *model.DetailRecord) model.PageSequence {
	main := model.RenderedView{
		Title:    rec.Title,
		Body:     adapter.Truncate(rec.Description, 1500),
		Fields:   rec.Fields,
		ThumbURL: rec.Thumbnail,
		ImageURL: rec.Banner,
	}
	if len(rec.Links) > 0 {
		main.URL = rec.Links[0].URL
	}
	pages := model.PageSequence{main}

	cast, _ := rec.Extra.([]tmdbCastMember)
	for start := 0; start < len(cast); start += tmdbCastPerPage {
		end := min(start+tmdbCastPerPage, len(cast))
		var b strings.Builder
		for _, m := range cast[start:end] {
			if m.Character != "" {
				fmt.Fprintf(&b, "%s as %s\n", m.Name, m.Character)
			} else {
				fmt.Fprintf(&b, "%s\n", m.Name)
			}
		}
		pages = append(pages, model.RenderedView{
			Title:    rec.Title + " - Cast",
			Body:     strings.TrimRight(b.String(), "\n"),
			ThumbURL: rec.Thumbnail,
			URL:      main.URL,
		})
	}
	return pages
}
