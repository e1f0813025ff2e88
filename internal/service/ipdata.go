package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

const (
	ipdataBase = "https://api.ipdata.co"

	// ipdataMaxBulk caps one /ip invocation; extra addresses are dropped.
	ipdataMaxBulk = 20
)

// IPLookup resolves one or more IP addresses to geolocation pages, one page
// per address. It bypasses the disambiguation pipeline: an IP address is
// already unambiguous. Invalid addresses get an error page instead of
// failing the whole batch.
func IPLookup(ctx context.Context, client *webclient.Client, apiKey string, addrs []string) (model.PageSequence, error) {
	if len(addrs) == 0 {
		return nil, adapter.ErrEmptyResult
	}
	if len(addrs) > ipdataMaxBulk {
		addrs = addrs[:ipdataMaxBulk]
	}

	var pages model.PageSequence
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if net.ParseIP(addr) == nil {
			pages = append(pages, model.RenderedView{
				Title: addr,
				Body:  "Not a valid IP address.",
			})
			continue
		}
		page, err := ipdataFetch(ctx, client, apiKey, addr)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func ipdataFetch(ctx context.Context, client *webclient.Client, apiKey, addr string) (model.RenderedView, error) {
	url := fmt.Sprintf("%s/%s?api-key=%s", ipdataBase, addr, apiKey)
	resp := client.Get(ctx, url, nil, nil)

	if resp.Status == http.StatusForbidden || resp.Status == http.StatusTooManyRequests {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body, &e)
		return model.RenderedView{}, &adapter.RateLimitedError{Message: e.Message}
	}
	if resp.Status == http.StatusRequestTimeout || resp.Status >= 500 {
		return model.RenderedView{}, &adapter.UnavailableError{Code: resp.Status}
	}
	if !resp.OK() {
		return model.RenderedView{}, &adapter.NotFoundError{Code: resp.Status}
	}

	var payload struct {
		IP            string  `json:"ip"`
		City          string  `json:"city"`
		Region        string  `json:"region"`
		CountryName   string  `json:"country_name"`
		ContinentName string  `json:"continent_name"`
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
		Flag          string  `json:"flag"`
		ASN           struct {
			ASN  string `json:"asn"`
			Name string `json:"name"`
		} `json:"asn"`
		Threat struct {
			IsTor         bool `json:"is_tor"`
			IsProxy       bool `json:"is_proxy"`
			IsKnownAbuser bool `json:"is_known_abuser"`
		} `json:"threat"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.IP == "" {
		return model.RenderedView{}, &adapter.NotFoundError{Code: resp.Status, Message: "unexpected payload"}
	}

	location := joinNonEmpty(", ", payload.City, payload.Region, payload.CountryName)
	fields := []model.Field{
		{Name: "Location", Value: adapter.OrNA(location), Inline: true},
		{Name: "Continent", Value: adapter.OrNA(payload.ContinentName), Inline: true},
		{Name: "Coordinates", Value: fmt.Sprintf("%.4f, %.4f", payload.Latitude, payload.Longitude), Inline: true},
	}
	if payload.ASN.ASN != "" {
		fields = append(fields, model.Field{
			Name:   "Network",
			Value:  joinNonEmpty(" ", payload.ASN.ASN, payload.ASN.Name),
			Inline: true,
		})
	}
	var flags []string
	if payload.Threat.IsTor {
		flags = append(flags, "Tor")
	}
	if payload.Threat.IsProxy {
		flags = append(flags, "proxy")
	}
	if payload.Threat.IsKnownAbuser {
		flags = append(flags, "known abuser")
	}
	if len(flags) > 0 {
		fields = append(fields, model.Field{Name: "Threat", Value: strings.Join(flags, ", "), Inline: true})
	}

	return model.RenderedView{
		Title:    payload.IP,
		Fields:   fields,
		ThumbURL: payload.Flag,
	}, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
