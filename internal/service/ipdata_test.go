package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/h2non/gock"

	"lookup_bot/internal/adapter"
	"lookup_bot/internal/webclient"
)

func ipdataClient(t *testing.T) *webclient.Client {
	t.Helper()
	hc := &http.Client{}
	gock.InterceptClient(hc)
	t.Cleanup(gock.Off)
	return webclient.New(hc)
}

const ipdataFixture = `{
  "ip": "8.8.8.8",
  "city": "Mountain View",
  "region": "California",
  "country_name": "United States",
  "continent_name": "North America",
  "latitude": 37.4224,
  "longitude": -122.0842,
  "flag": "https://ipdata.co/flags/us.png",
  "asn": {"asn": "AS15169", "name": "Google LLC"},
  "threat": {"is_tor": false, "is_proxy": false, "is_known_abuser": false}
}`

func TestIPLookup(t *testing.T) {
	gock.New("https://api.ipdata.co").
		Get("/8.8.8.8").
		Reply(200).
		JSON(ipdataFixture)

	pages, err := IPLookup(context.Background(), ipdataClient(t), "key", []string{"8.8.8.8"})
	if err != nil {
		t.Fatalf("IPLookup: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].Title != "8.8.8.8" {
		t.Errorf("got title %q", pages[0].Title)
	}

	fields := map[string]string{}
	for _, f := range pages[0].Fields {
		fields[f.Name] = f.Value
	}
	if fields["Location"] != "Mountain View, California, United States" {
		t.Errorf("got location %q", fields["Location"])
	}
	if fields["Network"] != "AS15169 Google LLC" {
		t.Errorf("got network %q", fields["Network"])
	}
	if _, ok := fields["Threat"]; ok {
		t.Error("threat field present for a clean address")
	}
}

func TestIPLookupInvalidAddress(t *testing.T) {
	pages, err := IPLookup(context.Background(), ipdataClient(t), "key", []string{"not-an-ip"})
	if err != nil {
		t.Fatalf("IPLookup: %v", err)
	}
	if len(pages) != 1 || pages[0].Body != "Not a valid IP address." {
		t.Errorf("got pages %+v", pages)
	}
}

func TestIPLookupQuota(t *testing.T) {
	gock.New("https://api.ipdata.co").
		Get("/8.8.8.8").
		Reply(403).
		JSON(`{"message": "You have exceeded your free tier limit"}`)

	_, err := IPLookup(context.Background(), ipdataClient(t), "key", []string{"8.8.8.8"})
	var rl *adapter.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("got %v, want RateLimitedError", err)
	}
}

func TestIPLookupBulkCap(t *testing.T) {
	addrs := make([]string, 25)
	for i := range addrs {
		addrs[i] = "bogus" // invalid on purpose: no requests go out
	}
	pages, err := IPLookup(context.Background(), ipdataClient(t), "key", addrs)
	if err != nil {
		t.Fatalf("IPLookup: %v", err)
	}
	if len(pages) != 20 {
		t.Errorf("got %d pages, want 20", len(pages))
	}
}

func TestIPLookupEmpty(t *testing.T) {
	_, err := IPLookup(context.Background(), ipdataClient(t), "key", nil)
	if !errors.Is(err, adapter.ErrEmptyResult) {
		t.Fatalf("got %v, want ErrEmptyResult", err)
	}
}
