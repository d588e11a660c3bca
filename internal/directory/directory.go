package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/KENnotcode/taanscrape/internal/model"
)

// ErrNoMembers is returned when enumeration finishes without discovering a
// single member detail page. This means the site is unreachable or has
// changed shape, and is a fatal startup error: no output file is written.
var ErrNoMembers = errors.New("no member pages discovered: site unreachable or listing layout changed")

// listingRoot pairs a listing path with the member category it lists.
type listingRoot struct {
	path     string
	category string
}

// listingRoots are the three member directories, in the order the site
// presents them. Enumeration order follows this order, so output row
// order is stable across runs.
var listingRoots = []listingRoot{
	{path: "/members", category: model.CategoryGeneral},
	{path: "/associate-members", category: model.CategoryAssociate},
	{path: "/regional-members", category: model.CategoryRegional},
}

// alphabetFilters returns the listing filter values: the empty string for
// the unfiltered page, then a through z.
func alphabetFilters() []string {
	filters := make([]string, 0, 27)
	filters = append(filters, "")
	for c := 'a'; c <= 'z'; c++ {
		filters = append(filters, string(c))
	}
	return filters
}

// Fetcher retrieves the body of a single URL.
// The scrape client satisfies this; tests substitute a fake.
type Fetcher interface {
	Get(ctx context.Context, pageURL string) ([]byte, error)
}

// Enumerator produces the ordered sequence of member fetch tasks.
type Enumerator struct {
	// fetcher retrieves listing pages, with the client's retry policy.
	fetcher Fetcher

	// baseURL is the directory root, e.g. https://www.taan.org.np.
	baseURL *url.URL

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithLogger sets a custom logger for the enumerator.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enumerator) {
		e.logger = logger
	}
}

// NewEnumerator creates an Enumerator for the directory rooted at baseURL.
func NewEnumerator(fetcher Fetcher, baseURL string, opts ...Option) (*Enumerator, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	e := &Enumerator{
		fetcher: fetcher,
		baseURL: u,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Enumerate walks every listing page and returns the member fetch tasks in
// a stable order with no duplicate URLs. A listing page that fails to fetch
// is logged and skipped; only a run that discovers nothing at all fails.
//
// Duplicates can occur because a member may appear on both the unfiltered
// page and its letter page; the first occurrence wins, which also fixes the
// member's category when a URL shows up under more than one root.
func (e *Enumerator) Enumerate(ctx context.Context) ([]model.FetchTask, error) {
	seen := make(map[string]bool)
	tasks := make([]model.FetchTask, 0)

	for _, root := range listingRoots {
		e.logger.Info("enumerating listing", "path", root.path, "category", root.category)

		for _, filter := range alphabetFilters() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			pageURL := e.listingURL(root.path, filter)
			body, err := e.fetcher.Get(ctx, pageURL)
			if err != nil {
				e.logger.Warn("listing page failed",
					"url", pageURL,
					"error", err,
				)
				continue
			}

			links, err := extractMemberLinks(body, e.baseURL)
			if err != nil {
				e.logger.Warn("listing page unparseable",
					"url", pageURL,
					"error", err,
				)
				continue
			}

			added := 0
			for _, link := range links {
				if seen[link] {
					continue
				}
				seen[link] = true
				tasks = append(tasks, model.FetchTask{
					Index:    len(tasks),
					URL:      link,
					Category: root.category,
				})
				added++
			}
			if added > 0 {
				e.logger.Debug("listing page done",
					"url", pageURL,
					"new_members", added,
				)
			}
		}
	}

	if len(tasks) == 0 {
		return nil, ErrNoMembers
	}

	e.logger.Info("enumeration complete", "members", len(tasks))
	return tasks, nil
}

// listingURL builds the URL of one listing page, with the optional
// alphabetical filter as the site's ?l= query parameter.
func (e *Enumerator) listingURL(path, filter string) string {
	u := *e.baseURL
	u.Path = path
	if filter != "" {
		q := url.Values{}
		q.Set("l", filter)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
