// Package query turns raw search form input into the effective query string
// sent to the song index.
//
// # Overview
//
// The search page has several independent controls that can change what is
// searched: the free-text box, the search button, the sort dropdown, the
// pagination links and the facet links in the sidebar. Each of them arrives
// as a plain request parameter, and each may be missing. This package decides
// which control triggered the request and produces a single query string that
// carries exactly one authoritative sort directive.
//
// # Sort directives
//
// A directive is a whitespace-delimited token of the form "sort:<value>":
//
//	whale genre:rock sort:oldest
//
// The recognised values are listed in SortValues. Unknown values are kept in
// the query as typed but do not select any dropdown entry.
//
// # Usage
//
//	res := query.Resolve(query.RawInput{
//		Query:  query.String("whale sort:oldest"),
//		SortBy: query.String("artist"),
//		Start:  1,
//	})
//	// res.Query == "whale sort:artist "
//	opts, err := query.SortOptions(res.Query)
//
// Everything in this package is a pure function of its arguments and safe
// for concurrent use.
package query
