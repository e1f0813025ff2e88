package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"lookup_bot/internal/model"
	"lookup_bot/internal/webclient"
)

// Chooser collapses a candidate list into a single chosen id.
// It returns ErrCancelled when the user cancels or the prompt times out.
type Chooser interface {
	Choose(ctx context.Context, candidates []model.Candidate) (string, error)
}

// Presenter delivers a page sequence to the originating chat.
type Presenter interface {
	Present(ctx context.Context, pages model.PageSequence) error
}

// Env carries the per-invocation environment supplied by the host.
type Env struct {
	NSFW bool
}

// Pipeline composes the shared client, disambiguation, and pagination into
// the per-service query flow. One Pipeline is shared by all services.
type Pipeline struct {
	client *webclient.Client
	log    *slog.Logger
}

// NewPipeline creates a Pipeline over the shared HTTP client.
func NewPipeline(client *webclient.Client, log *slog.Logger) *Pipeline {
	return &Pipeline{client: client, log: log}
}

// Run executes the full query pipeline for one service. Errors are typed
// per the adapter taxonomy; callers convert them with UserMessage.
func (p *Pipeline) Run(ctx context.Context, svc *Descriptor, query string, env Env, choose Chooser, present Presenter) error {
	if svc.NormalizeQuery != nil {
		query = svc.NormalizeQuery(query)
	}
	searchResp := p.fetch(ctx, svc, svc.SearchURL(query), svc.SearchBody, query)
	if err := classify(searchResp); err != nil {
		return err
	}

	candidates, err := svc.ParseSearch(searchResp)
	if err != nil {
		p.logParseErr(svc, "search", err)
		return err
	}
	if len(candidates) == 0 {
		return ErrEmptyResult
	}
	sortCandidates(candidates)

	id, err := choose.Choose(ctx, candidates)
	if err != nil {
		return err
	}

	detailResp := searchResp
	if svc.DetailEndpoint != "" || svc.DetailBody != nil {
		detailResp = p.fetch(ctx, svc, svc.DetailURL(id), svc.DetailBody, id)
		if err := classify(detailResp); err != nil {
			return err
		}
	}

	rec, err := svc.ParseDetail(detailResp, id)
	if err != nil {
		p.logParseErr(svc, "detail", err)
		return err
	}

	pages := svc.BuildViews(rec)
	if rec.Adult && !env.NSFW {
		pages = nsfwGate(rec)
	}
	if len(pages) == 0 {
		return ErrEmptyResult
	}

	return present.Present(ctx, pages)
}

func (p *Pipeline) fetch(ctx context.Context, svc *Descriptor, url string, body func(string) any, arg string) webclient.Response {
	switch {
	case body != nil:
		return p.client.Post(ctx, url, body(arg), svc.Headers)
	case svc.Scrape:
		return p.client.Scrape(ctx, url, svc.Headers)
	default:
		return p.client.Get(ctx, url, svc.Params, svc.Headers)
	}
}

func (p *Pipeline) logParseErr(svc *Descriptor, stage string, err error) {
	if _, visible := UserMessage(err); visible {
		p.log.Warn("parse failed", "service", svc.Name, "stage", stage, "error", err)
	}
}

// classify maps transport-level failures to typed errors before any parser
// runs. 4xx responses are passed through: the parser decides what they mean.
func classify(resp webclient.Response) error {
	if resp.Status == http.StatusRequestTimeout || resp.Status >= 500 {
		return &UnavailableError{Code: resp.Status}
	}
	return nil
}

// sortCandidates orders candidates most-recent-first where dates exist.
// The sort is stable, so undated candidates keep remote insertion order.
func sortCandidates(cs []model.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].SortDate > cs[j].SortDate
	})
}

// nsfwGate replaces every page of an adult-flagged record with a single
// notice. No field of the record other than its title is rendered.
func nsfwGate(rec *model.DetailRecord) model.PageSequence {
	return model.PageSequence{{
		Title: rec.Title,
		Body:  "This result is marked as NSFW. Retry in an NSFW channel.",
	}}
}
