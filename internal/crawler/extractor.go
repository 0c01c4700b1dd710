package crawler

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/fut-harvester/internal/domain"
)

var (
	reDetailID = regexp.MustCompile(`player/(\d+)/`)
	reFaceID   = regexp.MustCompile(`(\d+)\.png`)
)

// The six card sub-attributes; every other key in the embedded stats
// blob is a general stat.
var potentialStats = map[string]struct{}{
	"ppace":      {},
	"pshooting":  {},
	"ppassing":   {},
	"pdribbling": {},
	"pdefending": {},
	"pphysical":  {},
}

var pgpPlatforms = []string{"ps4", "xbox", "pc"}

// Metric names for the per-platform aggregate fragments, in on-page
// order starting at index 1 (index 0 is a header cell).
var pgpMetrics = []string{"red_cards", "yellow_cards", "assists", "goals", "games"}

var realStatFields = []string{
	"real_matches", "real_goals", "real_assists", "real_own_goals",
	"real_yellow_cards", "real_red_cards", "real_sub_in", "real_sub_out",
}

// PlayerIDFromURL extracts the numeric player id from a detail URL.
func PlayerIDFromURL(url string) (string, error) {
	m := reDetailID.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedURL, url)
	}
	return m[1], nil
}

type extraction struct {
	doc     *goquery.Document
	rec     *domain.Record
	missing []string
}

func (e *extraction) miss(field string) {
	e.missing = append(e.missing, field)
}

// setText stores the trimmed text of the first element matching selector,
// or records the field as missing.
func (e *extraction) setText(field, selector string) {
	sel := e.doc.Find(selector).First()
	if sel.Length() == 0 {
		e.miss(field)
		return
	}
	e.rec.Set(field, strings.TrimSpace(sel.Text()))
}

// ExtractPlayer parses one detail page into a player record.
//
// Missing fixed elements do not abort the record: each is noted in
// Missing and the field is simply absent. Only an unextractable id or an
// unparsable embedded payload aborts the whole entity.
func ExtractPlayer(pageURL string, body []byte) (*domain.Player, error) {
	id, err := PlayerIDFromURL(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	e := &extraction{doc: doc, rec: domain.NewRecord()}
	e.rec.Set("futbin_url", pageURL)
	e.rec.Set("url_id", id)

	faceURL, _ := doc.Find("img#player_pic").First().Attr("src")
	if m := reFaceID.FindStringSubmatch(faceURL); m != nil {
		e.rec.Set("futbin_id", m[1])
	} else {
		e.miss("futbin_id")
	}

	e.setText("short_name", "li.breadcrumb-item.active")
	e.setText("position", "div.pcdisplay-pos")
	e.setText("rating", "div.pcdisplay-rat")

	card := doc.Find("div#Player-card").First()
	if card.Length() == 0 {
		e.miss("rarity")
		e.miss("is_rare")
	} else {
		e.rec.Set("rarity", card.AttrOr("data-level", ""))
		e.rec.Set("is_rare", card.AttrOr("data-rare-type", ""))
	}

	if err := e.embeddedStats(); err != nil {
		return nil, err
	}
	if err := e.infoTable(); err != nil {
		return nil, err
	}
	e.platformAggregates()

	if faceURL != "" {
		e.rec.Set("img_face", faceURL)
	} else {
		e.miss("img_face")
	}
	e.setAttr("img_country", "img#player_nation", "src")
	e.setAttr("img_club", "img#player_club", "src")

	e.setText("upvotes", "span#votes_up")
	e.setText("downvotes", "span#votes_down")

	e.traits()
	e.realStats()

	return &domain.Player{ID: id, Fields: e.rec, Missing: e.missing}, nil
}

func (e *extraction) setAttr(field, selector, attr string) {
	val, ok := e.doc.Find(selector).First().Attr(attr)
	if !ok {
		e.miss(field)
		return
	}
	e.rec.Set(field, val)
}

// embeddedStats parses the second #player_stats_json blob and splits its
// keys into attr_/stat_ families, preserving document key order.
func (e *extraction) embeddedStats() error {
	sel := e.doc.Find("#player_stats_json")
	if sel.Length() < 2 {
		e.miss("player_stats")
		return nil
	}

	raw := strings.TrimSpace(sel.Eq(1).Text())
	stats := domain.NewRecord()
	if err := stats.UnmarshalJSON([]byte(raw)); err != nil {
		return fmt.Errorf("%w: player stats json: %v", ErrMalformedPayload, err)
	}

	for _, key := range stats.Keys() {
		if key == "test" {
			continue
		}
		val, _ := stats.Get(key)
		if _, ok := potentialStats[key]; ok {
			e.rec.Set("attr_"+key, val)
		} else {
			e.rec.Set("stat_"+key, val)
		}
	}
	return nil
}

// reorderDate turns "D-M-Y" into "Y-M-D".
func reorderDate(dmy string) (string, error) {
	parts := strings.Split(strings.TrimSpace(dmy), "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: date %q", ErrMalformedPayload, dmy)
	}
	return strings.Join([]string{parts[2], parts[1], parts[0]}, "-"), nil
}

func (e *extraction) infoTable() error {
	var walkErr error

	e.doc.Find("table.table-info tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		field := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())

		switch field {
		case "R.Face":
			// The cell renders an icon; the first class token is the value.
			if toks := strings.Fields(row.Find("td > i").First().AttrOr("class", "")); len(toks) > 0 {
				value = toks[0]
			}
		case "Age":
			link := row.Find("td > a").First()
			dob := strings.Replace(link.AttrOr("title", ""), "DOB - ", "", 1)
			if dob == "" {
				dob = strings.Replace(link.AttrOr("data-original-title", ""), "DOB - ", "", 1)
			}
			birth, err := reorderDate(dob)
			if err != nil {
				walkErr = err
				return false
			}
			e.rec.Set("birthdate", birth)
			value = strings.TrimSpace(strings.Replace(value, "years old", "", 1))
		case "DOB":
			// Some pages carry a DOB row instead of Age; both converge on
			// the same birthdate format.
			field = "birthdate"
			birth, err := reorderDate(value)
			if err != nil {
				walkErr = err
				return false
			}
			value = birth
		}

		if field != "" && value != "" {
			e.rec.Set(field, value)
		}
		return true
	})

	return walkErr
}

// platformAggregates reads the five per-game fragments for each platform.
// Extraction is positional (indices 1..5 within the fragment group); a
// reordering of the fragments upstream would silently corrupt these
// fields, there is no label to key off.
func (e *extraction) platformAggregates() {
	for _, platform := range pgpPlatforms {
		sel := e.doc.Find("div." + platform + "-pgp-data")
		if sel.Length() < len(pgpMetrics)+1 {
			e.miss(platform + "_pgp")
			continue
		}
		for i, metric := range pgpMetrics {
			e.rec.Set(platform+"_pgp_"+metric, strings.TrimSpace(sel.Eq(i+1).Text()))
		}
	}
}

// traits joins the trait tags into one sorted, comma-delimited field so
// output is deterministic regardless of on-page order.
func (e *extraction) traits() {
	var list []string
	e.doc.Find("div.its_tr").Each(func(_ int, s *goquery.Selection) {
		list = append(list, strings.TrimSpace(s.Text()))
	})
	sort.Strings(list)
	e.rec.Set("traits", strings.Join(list, ","))
}

// realStats extracts the optional real-world career block. When the block
// is absent all eight fields are omitted.
func (e *extraction) realStats() {
	holder := e.doc.Find("div.row.player-rs-holder").First()
	if holder.Length() == 0 {
		return
	}
	vals := holder.Find("div.rs-stat-val")
	if vals.Length() < len(realStatFields) {
		e.miss("real_stats")
		return
	}
	for i, field := range realStatFields {
		e.rec.Set(field, strings.TrimSpace(vals.Eq(i).Text()))
	}
}
