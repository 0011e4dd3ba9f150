package bunpro

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"bunpro-assist/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// a labeled grammar section is missing from the stats page, either the
// markup changed or the account genuinely has nothing in that category
var SectionNotFoundErr = fmt.Errorf("grammar section not found")

type GrammarStructure struct {
	Japanese string `json:"japanese"`
	Meaning  string `json:"meaning"`
}

// GrammarPoint is one tile scraped from the stats page. Structure is
// attached later from the detail page and stays absent from the JSON
// output when the detail lookup yielded nothing.
type GrammarPoint struct {
	Link      string            `json:"link"`
	Text      string            `json:"text"`
	Structure *GrammarStructure `json:"structure,omitempty"`
}

type StudyData struct {
	TroubledGrammar []GrammarPoint `json:"troubled_grammar"`
	GhostReviews    []GrammarPoint `json:"ghost_reviews"`
}

// pause taken after every detail page request, successful or not, to
// bound the request rate against the site
const detailRequestDelay = 100 * time.Millisecond

// StudyData fetches the profile stats page, classifies the troubled
// grammar and ghost review sections, then visits every grammar point's
// detail page in source order to attach its structure. Requests are
// strictly sequential, the troubled collection is fully enriched before
// the ghost collection is touched.
func (c *Client) StudyData(ctx context.Context) (StudyData, error) {
	ctx, span := tracer.Start(ctx, "client:StudyData")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.selectors.StatsPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch stats page")
		return StudyData{}, err
	}
	if c.atSignIn(res) {
		span.SetStatus(codes.Error, SessionExpiredErr.Error())
		return StudyData{}, SessionExpiredErr
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse stats page html")
		return StudyData{}, err
	}

	sections := doc.Find(c.selectors.Section)

	troubled := c.findSection(sections, c.selectors.TroubledGrammarLabel)
	if troubled == nil {
		err := fmt.Errorf("%w: %q", SectionNotFoundErr, c.selectors.TroubledGrammarLabel)
		span.SetStatus(codes.Error, err.Error())
		return StudyData{}, err
	}
	ghosts := c.findSection(sections, c.selectors.GhostReviewsLabel)
	if ghosts == nil {
		err := fmt.Errorf("%w: %q", SectionNotFoundErr, c.selectors.GhostReviewsLabel)
		span.SetStatus(codes.Error, err.Error())
		return StudyData{}, err
	}

	data := StudyData{
		TroubledGrammar: c.tiles(troubled),
		GhostReviews:    c.tiles(ghosts),
	}
	span.SetAttributes(
		attribute.Int("troubled_grammar", len(data.TroubledGrammar)),
		attribute.Int("ghost_reviews", len(data.GhostReviews)),
	)

	c.enrichAll(ctx, data.TroubledGrammar)
	c.enrichAll(ctx, data.GhostReviews)

	return data, nil
}

// findSection returns the first section whose label paragraph matches
// `label` exactly, or nil when no section carries it.
func (c *Client) findSection(sections *goquery.Selection, label string) *goquery.Selection {
	var found *goquery.Selection
	sections.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := htmlutil.SelectionText(s.Find(c.selectors.SectionLabel).First())
		if text == label {
			found = s
			return false
		}
		return true
	})
	return found
}

// tiles extracts every grammar tile of a section in presentation order.
// A section with no tiles yields an empty, non-nil slice.
func (c *Client) tiles(section *goquery.Selection) []GrammarPoint {
	points := []GrammarPoint{}
	section.Find(c.selectors.Tile).Each(func(_ int, tile *goquery.Selection) {
		points = append(points, GrammarPoint{
			Link: tile.Find(c.selectors.TileAnchor).First().AttrOr("href", ""),
			Text: htmlutil.SelectionText(tile.Find(c.selectors.TileLabel).First()),
		})
	})
	return points
}

func (c *Client) enrichAll(ctx context.Context, points []GrammarPoint) {
	for i := range points {
		c.enrich(ctx, &points[i])
		c.sleep(detailRequestDelay)
	}
}

// enrich attaches the structure block from a grammar point's detail
// page. Failures degrade to a bare record and never abort the batch,
// a partially enriched dataset beats no dataset.
func (c *Client) enrich(ctx context.Context, point *GrammarPoint) {
	ctx, span := tracer.Start(ctx, "client:enrich")
	defer span.End()

	span.SetAttributes(attribute.String("link", point.Link))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(point.Link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch detail page")
		slog.WarnContext(ctx, "leaving grammar point bare", "link", point.Link, "err", err)
		return
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, fmt.Sprintf("detail page returned status %d", res.StatusCode()))
		slog.WarnContext(ctx, "leaving grammar point bare", "link", point.Link, "status", res.StatusCode())
		return
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse detail page html")
		slog.WarnContext(ctx, "leaving grammar point bare", "link", point.Link, "err", err)
		return
	}

	main := doc.Find(c.selectors.DetailMain)

	header := main.Find(c.selectors.DetailHeader)
	japanese := htmlutil.SelectionText(header.Find(c.selectors.DetailJapanese).First())
	meaning := htmlutil.SelectionText(header.Find(c.selectors.DetailMeaning).First())
	if japanese != "" && meaning != "" {
		point.Structure = &GrammarStructure{
			Japanese: japanese,
			Meaning:  meaning,
		}
	}

	// the long-form about prose is located but deliberately not attached:
	// it would balloon the snapshot far past what the chat context needs.
	// parsing stays live so drift in that part of the page still surfaces
	// in debug output.
	// TODO: decide whether a trimmed about text belongs in the snapshot.
	about := c.aboutText(main)
	if about != "" {
		slog.DebugContext(ctx, "discarding about text", "link", point.Link, "len", len(about))
	}
}

// aboutText walks the Details tab down to its about section prose.
func (c *Client) aboutText(main *goquery.Selection) string {
	tabs := main.Find(c.selectors.DetailTabList)
	if tabs.Find(c.selectors.DetailTab).Length() == 0 {
		return ""
	}
	article := main.Find(c.selectors.DetailArticle)
	section := article.Find(c.selectors.AboutHeader).Closest("section")
	return htmlutil.SelectionText(section.Find(c.selectors.AboutProse))
}
