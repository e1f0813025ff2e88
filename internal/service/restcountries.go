package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const restcountriesBase = "https://restcountries.com/v3.1"

type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA3       string   `json:"cca3"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages map[string]string `json:"languages"`
	TLD       []string          `json:"tld"`
	Flags     struct {
		PNG string `json:"png"`
	} `json:"flags"`
	Maps struct {
		GoogleMaps string `json:"googleMaps"`
	} `json:"maps"`
}

// NewRestCountries builds the descriptor for country lookup. The name search
// already returns full records, so there is no detail endpoint; the chosen
// country is picked back out of the search payload by its cca3 code.
func NewRestCountries() *adapter.Descriptor {
	return &adapter.Descriptor{
		Name:           "country",
		SearchEndpoint: restcountriesBase + "/name/{query}",
		ParseSearch:    parseRestCountriesSearch,
		ParseDetail:    parseRestCountriesDetail,
		BuildViews:     buildRestCountriesViews,
	}
}

func parseRestCountries(resp webclient.Response) ([]restCountry, error) {
	if !resp.OK() {
		return nil, &adapter.NotFoundError{Code: resp.Status}
	}
	var countries []restCountry
	if err := json.Unmarshal(resp.Body, &countries); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}
	return countries, nil
}

func parseRestCountriesSearch(resp webclient.Response) ([]model.Candidate, error) {
	countries, err := parseRestCountries(resp)
	if err != nil {
		return nil, err
	}
	var candidates []model.Candidate
	for _, c := range countries {
		candidates = append(candidates, model.Candidate{
			ID:    c.CCA3,
			Label: c.Name.Common,
			Hint:  c.Region,
		})
	}
	return candidates, nil
}

func parseRestCountriesDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	countries, err := parseRestCountries(resp)
	if err != nil {
		return nil, err
	}
	for _, c := range countries {
		if c.CCA3 == id {
			return restCountryRecord(&c), nil
		}
	}
	return nil, &adapter.NotFoundError{Code: resp.Status, Message: "code " + id}
}

func restCountryRecord(c *restCountry) *model.DetailRecord {
	var currencies []string
	for _, cur := range c.Currencies {
		name := cur.Name
		if cur.Symbol != "" {
			name += " (" + cur.Symbol + ")"
		}
		currencies = append(currencies, name)
	}
	sort.Strings(currencies)

	languages := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		languages = append(languages, l)
	}
	sort.Strings(languages)

	region := c.Region
	if c.Subregion != "" {
		region += ", " + c.Subregion
	}

	fields := []model.Field{
		{Name: "Capital", Value: adapter.OrNA(strings.Join(c.Capital, ", ")), Inline: true},
		{Name: "Region", Value: adapter.OrNA(region), Inline: true},
		{Name: "Population", Value: formatPopulation(c.Population), Inline: true},
		{Name: "Area", Value: fmt.Sprintf("%.0f km²", c.Area), Inline: true},
		{Name: "Currencies", Value: adapter.OrNA(strings.Join(currencies, ", ")), Inline: true},
		{Name: "Languages", Value: adapter.OrNA(strings.Join(languages, ", ")), Inline: true},
	}
	if len(c.TLD) > 0 {
		fields = append(fields, model.Field{Name: "TLD", Value: strings.Join(c.TLD, ", "), Inline: true})
	}

	var links []model.Link
	if c.Maps.GoogleMaps != "" {
		links = append(links, model.Link{Title: "Map", URL: c.Maps.GoogleMaps})
	}

	return &model.DetailRecord{
		ID:          c.CCA3,
		Title:       c.Name.Common,
		Description: c.Name.Official,
		Thumbnail:   c.Flags.PNG,
		Links:       links,
		Fields:      fields,
	}
}

func buildRestCountriesViews(rec *model.DetailRecord) model.PageSequence {
	page := model.RenderedView{
		Title:    rec.Title,
		Body:     rec.Description,
		Fields:   rec.Fields,
		ThumbURL: rec.Thumbnail,
	}
	if len(rec.Links) > 0 {
		page.URL = rec.Links[0].URL
	}
	return model.PageSequence{page}
}

// formatPopulation groups digits by thousands (1234567 -> "1,234,567").
func formatPopulation(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}
