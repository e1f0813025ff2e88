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

const (
	cheapsharkBase     = "https://www.cheapshark.com/api/1.0"
	cheapsharkRedirect = "https://www.cheapshark.com/redirect?dealID="

	cheapsharkMaxDeals = 8
)

// Store names per CheapShark's /stores listing. The listing changes rarely;
// unknown ids fall back to a numbered label.
var cheapsharkStores = map[string]string{
	"1":  "Steam",
	"2":  "GamersGate",
	"3":  "GreenManGaming",
	"7":  "GOG",
	"8":  "Origin",
	"11": "Humble Store",
	"13": "Uplay",
	"15": "Fanatical",
	"21": "WinGameStore",
	"23": "GameBillet",
	"24": "Voidu",
	"25": "Epic Games Store",
	"27": "Gamesplanet",
	"28": "Gamesload",
	"29": "2Game",
	"30": "IndieGala",
	"31": "Blizzard Shop",
	"33": "DLGamer",
	"34": "Noctre",
	"35": "DreamGame",
}

func cheapsharkStore(id string) string {
	if name, ok := cheapsharkStores[id]; ok {
		return name
	}
	return "Store #" + id
}

// NewCheapShark builds the descriptor for game deal lookup.
func NewCheapShark() *adapter.Descriptor {
	return &adapter.Descriptor{
		Name:           "deals",
		SearchEndpoint: cheapsharkBase + "/games?title={query}&limit=15",
		DetailEndpoint: cheapsharkBase + "/games?id={id}",
		PageSize:       15,
		ParseSearch:    parseCheapSharkSearch,
		ParseDetail:    parseCheapSharkDetail,
		BuildViews:     buildCheapSharkViews,
	}
}

func parseCheapSharkSearch(resp webclient.Response) ([]model.Candidate, error) {
	if !resp.OK() {
		return nil, &adapter.NotFoundError{Code: resp.Status}
	}
	var payload []struct {
		GameID   string `json:"gameID"`
		External string `json:"external"`
		Cheapest string `json:"cheapest"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}

	var candidates []model.Candidate
	for _, g := range payload {
		candidates = append(candidates, model.Candidate{
			ID:    g.GameID,
			Label: g.External,
			Hint:  "from $" + g.Cheapest,
		})
	}
	return candidates, nil
}

func parseCheapSharkDetail(resp webclient.Response, id string) (*model.DetailRecord, error) {
	if !resp.OK() {
		return nil, &adapter.NotFoundError{Code: resp.Status}
	}
	var payload struct {
		Info struct {
			Title string `json:"title"`
			Thumb string `json:"thumb"`
		} `json:"info"`
		CheapestPriceEver struct {
			Price string `json:"price"`
			Date  int64  `json:"date"`
		} `json:"cheapestPriceEver"`
		Deals []struct {
			StoreID     string `json:"storeID"`
			DealID      string `json:"dealID"`
			Price       string `json:"price"`
			RetailPrice string `json:"retailPrice"`
			Savings     string `json:"savings"`
		} `json:"deals"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.Info.Title == "" {
		return nil, &adapter.NotFoundError{Code: resp.Status, Message: "id " + id}
	}

	fields := []model.Field{
		{Name: "Cheapest ever", Value: "$" + payload.CheapestPriceEver.Price, Inline: true},
		{Name: "Active deals", Value: strconv.Itoa(len(payload.Deals)), Inline: true},
	}

	var links []model.Link
	for i, d := range payload.Deals {
		if i == cheapsharkMaxDeals {
			break
		}
		savings, _ := strconv.ParseFloat(d.Savings, 64)
		title := fmt.Sprintf("%s: $%s", cheapsharkStore(d.StoreID), d.Price)
		if savings >= 1 {
			title += fmt.Sprintf(" (-%.0f%%)", savings)
		}
		links = append(links, model.Link{Title: title, URL: cheapsharkRedirect + d.DealID})
	}

	return &model.DetailRecord{
		ID:        id,
		Title:     payload.Info.Title,
		Thumbnail: payload.Info.Thumb,
		Links:     links,
		Fields:    fields,
	}, nil
}

func buildCheapSharkViews(rec *model.DetailRecord) model.PageSequence {
	var b strings.Builder
	for _, l := range rec.Links {
		fmt.Fprintf(&b, "[%s](%s)\n", l.Title, l.URL)
	}
	body := strings.TrimRight(b.String(), "\n")
	if body == "" {
		body = "No active deals."
	}
	return model.PageSequence{{
		Title:    rec.Title,
		Body:     body,
		Fields:   rec.Fields,
		ThumbURL: rec.Thumbnail,
	}}
}
