package adapter

import (
	"net/url"
	"strings"

	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

// Descriptor registers one remote service with the pipeline. A new service
// is added by providing a descriptor plus its parsers; the rest of the
// pipeline is service-independent.
type Descriptor struct {
	// Name is the service tag used in logs ("tmdb/movie", "pokedex", ...).
	Name string

	// SearchEndpoint is a URL template with {query} substitution.
	SearchEndpoint string
	// DetailEndpoint is a URL template with {id} substitution. Empty when
	// the search response already carries full records; ParseDetail is then
	// invoked on the search response.
	DetailEndpoint string

	// SearchBody and DetailBody, when set, switch the respective request to
	// a JSON POST (GraphQL services).
	SearchBody func(query string) any
	DetailBody func(id string) any

	// Scrape marks an HTML endpoint: longer timeout, fixed User-Agent.
	Scrape bool

	// NormalizeQuery, when set, rewrites the user's query before it is
	// substituted into the search request (case folding and the like).
	NormalizeQuery func(query string) string

	// Params and Headers are applied to every request (api_key, sort, ...).
	Params  url.Values
	Headers map[string]string

	// PageSize is the remote-side result cap for list queries.
	PageSize int

	// DropdownPager selects the title-menu paging surface: one control per
	// page, labelled with its title, instead of arrow controls.
	DropdownPager bool

	// ParseSearch maps the raw search payload to candidates. It is total:
	// it returns candidates or one of the typed errors, never panics.
	ParseSearch func(resp webclient.Response) ([]model.Candidate, error)
	// ParseDetail maps the raw detail payload (or, for services without a
	// detail endpoint, the search payload) plus the chosen id to a record.
	ParseDetail func(resp webclient.Response, id string) (*model.DetailRecord, error)
	// BuildViews renders a record into its page sequence.
	BuildViews func(rec *model.DetailRecord) model.PageSequence
}

// SearchURL substitutes the query into the search endpoint template.
func (d *Descriptor) SearchURL(query string) string {
	return strings.ReplaceAll(d.SearchEndpoint, "{query}", url.QueryEscape(query))
}

// DetailURL substitutes the id into the detail endpoint template.
func (d *Descriptor) DetailURL(id string) string {
	return strings.ReplaceAll(d.DetailEndpoint, "{id}", url.PathEscape(id))
}
