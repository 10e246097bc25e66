package crawl

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"jobsifter/internal/crawl/util"
	"jobsifter/internal/domain"
)

type nextState int

const (
	nextAbsent nextState = iota
	nextDisabled
	nextAvailable
)

// extractPage pulls records out of a DOM snapshot in on-page visual order and
// inspects the pagination control. Records missing their identity field are
// dropped, not fatal.
func (c *Crawler) extractPage(html, pageURL string) ([]domain.ListingRecord, string, nextState, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", nextAbsent, errors.Wrap(err, "parse listing page")
	}

	base, _ := url.Parse(pageURL)
	sel := c.cfg.Selectors

	var records []domain.ListingRecord
	doc.Find(sel.Listing).Each(func(i int, card *goquery.Selection) {
		href, _ := card.Find(sel.DetailLink).First().Attr("href")
		link := resolveURL(base, strings.TrimSpace(href))

		id := extractID(link, c.cfg.IDParam)
		if id == "" {
			c.log.Warnw("listing missing identity field, dropped", "index", i, "href", href)
			return
		}

		records = append(records, domain.ListingRecord{
			ID:         id,
			Title:      util.CleanText(card.Find(sel.Title).First().Text()),
			Employer:   util.CleanText(card.Find(sel.Employer).First().Text()),
			Location:   util.CleanText(card.Find(sel.Location).First().Text()),
			Summary:    util.CleanText(card.Find(sel.Summary).First().Text()),
			DetailLink: link,
		})
	})

	control := doc.Find(sel.NextPage).First()
	if control.Length() == 0 {
		return records, "", nextAbsent, nil
	}
	if controlDisabled(control) {
		return records, "", nextDisabled, nil
	}
	href, ok := control.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		// Present but not navigable reads the same as disabled.
		return records, "", nextDisabled, nil
	}
	return records, resolveURL(base, href), nextAvailable, nil
}

func controlDisabled(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return true
	}
	if v, ok := s.Attr("aria-disabled"); ok && strings.EqualFold(v, "true") {
		return true
	}
	if cls, ok := s.Attr("class"); ok && strings.Contains(strings.ToLower(cls), "disabled") {
		return true
	}
	return false
}

func resolveURL(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// extractID pulls the stable identity out of a detail link: the configured
// query parameter when present, otherwise the last path segment.
func extractID(link, idParam string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if idParam != "" {
		if v := strings.TrimSpace(u.Query().Get(idParam)); v != "" {
			return v
		}
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	return strings.TrimSpace(segs[len(segs)-1])
}
