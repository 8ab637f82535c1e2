package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/rubiojr/topsongs/pkg/catalog"
	"github.com/rubiojr/topsongs/pkg/query"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type searchForm struct {
	Query        string `schema:"q"`
	SubmitButton string `schema:"submitbtn"`
	SortBy       string `schema:"sortby"`
	Start        int    `schema:"start"`
}

// ParseRawInput reads the search form parameters. Parameters that were not
// sent stay nil; a missing or malformed start defaults to 1.
func ParseRawInput(values url.Values) query.RawInput {
	var form searchForm
	startOK := true
	if err := decoder.Decode(&form, values); err != nil {
		var merr schema.MultiError
		if errors.As(err, &merr) {
			_, bad := merr["start"]
			startOK = !bad
		}
		logger.Debugf("decoding search form: %v", err)
	}

	in := query.RawInput{Start: 1}
	if values.Has("q") {
		in.Query = query.String(form.Query)
	}
	if values.Has("submitbtn") {
		in.SubmitButton = query.String(form.SubmitButton)
	}
	if values.Has("sortby") {
		in.SortBy = query.String(form.SortBy)
	}
	if startOK && values.Get("start") != "" {
		in.Start = form.Start
	}
	return in
}

// AdvancedForm holds the fields of the advanced search form.
type AdvancedForm struct {
	Words  string `schema:"words"`
	Artist string `schema:"artist"`
	Title  string `schema:"title"`
	Genre  string `schema:"genre"`
	Decade string `schema:"decade"`
}

// ParseAdvancedForm decodes the advanced search form.
func ParseAdvancedForm(values url.Values) (AdvancedForm, error) {
	var form AdvancedForm
	if err := decoder.Decode(&form, values); err != nil {
		return AdvancedForm{}, fmt.Errorf("decoding advanced search: %w", err)
	}
	return form, nil
}

// Query composes the search box text for the form. It carries no sort
// directive; the search button adds the default one.
func (f AdvancedForm) Query() string {
	var tokens []string
	if w := strings.TrimSpace(f.Words); w != "" {
		tokens = append(tokens, w)
	}
	if a := strings.TrimSpace(f.Artist); a != "" {
		tokens = append(tokens, FacetArtist+":"+strconv.Quote(a))
	}
	if t := strings.TrimSpace(f.Title); t != "" {
		tokens = append(tokens, "title:"+strconv.Quote(t))
	}
	if g := GenreKey(f.Genre); g != "" {
		tokens = append(tokens, FacetGenre+":"+g)
	}
	if d := strings.TrimSpace(f.Decade); d != "" {
		tokens = append(tokens, FacetDecade+":"+d)
	}
	return strings.Join(tokens, " ")
}

// BirthdayQuery returns the effective query listing the songs released in
// the year of bday, a YYYY-MM-DD date.
func BirthdayQuery(bday string) (string, error) {
	t, err := time.Parse(catalog.DateLayout, strings.TrimSpace(bday))
	if err != nil {
		return "", fmt.Errorf("invalid birthday %q: %w", bday, err)
	}
	return fmt.Sprintf("year:%d %s", t.Year(), query.DefaultQuery), nil
}
