package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const gsmarenaBase = "https://www.gsmarena.com"

// NewGSMArena builds the descriptor for phone spec lookup. GSMArena has no
// API, so both stages scrape HTML; a missing spec cell degrades to "N/A"
// rather than failing the lookup.
func NewGSMArena() *adapter.Descriptor {
	return &adapter.Descriptor{
		Name:           "phone",
		SearchEndpoint: gsmarenaBase + "/results.php3?sQuickSearch=yes&sName={query}",
		DetailEndpoint: gsmarenaBase + "/{id}",
		Scrape:         true,
		ParseSearch:    parseGSMArenaSearch,
		ParseDetail:    parseGSMArenaDetail,
		BuildViews:     buildGSMArenaViews,
	}
}

func gsmarenaDocument(resp webclient.Response) (*goquery.Document, error) {
	if !resp.OK() {
		return nil, &adapter.NotFoundError{Code: resp.Status}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unparseable page"}
	}
	return doc, nil
}

func parseGSMArenaSearch(resp webclient.Response) ([]model.Candidate, error) {
	doc, err := gsmarenaDocument(resp)
	if err != nil {
		return nil, err
	}

	var candidates []model.Candidate
	doc.Find("div.makers ul li a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		label := strings.TrimSpace(sel.Find("strong span").Text())
		if label == "" {
			label = strings.TrimSpace(sel.Text())
		}
		candidates = append(candidates, model.Candidate{
			ID:    href,
			Label: label,
		})
	})
	return candidates, nil
}

// gsmarenaSpecs maps display names to GSMArena's data-spec cell attributes,
// in render order.
var gsmarenaSpecs = []struct {
	name string
	spec string
}{
	{"Released", "released-hl"},
	{"OS", "os-hl"},
	{"Display", "displaysize-hl"},
	{"Resolution", "displayres-hl"},
	{"Chipset", "chipset"},
	{"RAM", "ramsize-hl"},
	{"Storage", "internalmemory"},
	{"Camera", "camerapixels-hl"},
	{"Battery", "batsize-hl"},
}

func parseGSMArenaDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	doc, err := gsmarenaDocument(resp)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1.specs-phone-name-title").Text())
	if title == "" {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "page " + id}
	}

	fields := make([]model.Field, 0, len(gsmarenaSpecs))
	for _, s := range gsmarenaSpecs {
		value := strings.TrimSpace(doc.Find(fmt.Sprintf("[data-spec=%q]", s.spec)).First().Text())
		fields = append(fields, model.Field{Name: s.name, Value: adapter.OrNA(value), Inline: true})
	}

	thumb, _ := doc.Find("div.specs-photo-main img").First().Attr("src")

	return &model.DetailRecord{
		ID:        id,
		Title:     title,
		Thumbnail: thumb,
		Links: []model.Link{
			{Title: "GSMArena", URL: gsmarenaBase + "/" + id},
		},
		Fields: fields,
	}, nil
}

func buildGSMArenaViews(rec *model.DetailRecord) model.PageSequence {
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
