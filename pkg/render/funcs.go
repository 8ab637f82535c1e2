package render

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/topsongs/pkg/query"
	"github.com/rubiojr/topsongs/pkg/search"
)

// FormatDate renders a release date, or "unknown" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("Jan 2, 2006")
}

// SearchHref links to the results of an effective query.
func SearchHref(q string) string {
	return "/search?" + url.Values{"q": {q}}.Encode()
}

// PageHref links to another page of the same query. The button tells the
// server the link is a pagination link so the query is kept as is.
func PageHref(q string, start int, button string) string {
	return "/search?" + url.Values{
		"q":         {q},
		"submitbtn": {button},
		"start":     {strconv.Itoa(start)},
	}.Encode()
}

// FacetHref links to the query narrowed to one facet value.
func FacetHref(q, field, term string) string {
	return SearchHref(search.FacetLink(q, field, term))
}

func DetailHref(uri string) string {
	return "/search/detail?" + url.Values{"uri": {uri}}.Encode()
}

func ImageHref(uri string) string {
	return "/search/image?" + url.Values{"uri": {uri}}.Encode()
}

// FacetData feeds the facets sidebar template.
type FacetData struct {
	Query  string
	Facets []search.Facet
}

func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": FormatDate,

		// Links
		"searchHref": SearchHref,
		"pageHref":   PageHref,
		"facetHref":  FacetHref,
		"detailHref": DetailHref,
		"imageHref":  ImageHref,
		"facetData": func(q string, facets []search.Facet) FacetData {
			return FacetData{Query: q, Facets: facets}
		},
		"buttonPage": func() string { return query.ButtonPage },
		"buttonPrev": func() string { return query.ButtonPageMin },

		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			if length <= 3 {
				return s[:length]
			}
			return s[:length-3] + "..."
		},
		"printf": fmt.Sprintf,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}
}
