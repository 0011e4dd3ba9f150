package bunpro

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bunpro-assist/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func grammarTile(link, text string) string {
	return fmt.Sprintf(
		`<div class="user-profile-grammar-tile"><a href="%s"><p>%s</p></a></div>`,
		link, text,
	)
}

func grammarSection(label string, tiles ...string) string {
	return fmt.Sprintf(
		`<div class="upro-wrapper_gp-tiles"><p>%s</p>%s</div>`,
		label, strings.Join(tiles, "\n"),
	)
}

func statsPage(sections ...string) string {
	return fmt.Sprintf(
		`<html><body><div class="user-profile">%s</div></body></html>`,
		strings.Join(sections, "\n"),
	)
}

func detailPage(japanese, meaning string) string {
	header := ""
	if japanese != "" || meaning != "" {
		header = fmt.Sprintf(
			`<div id="js-rev-header"><span class="bp-ddw">%s</span><span class="text-body">%s</span></div>`,
			japanese, meaning,
		)
	}
	return fmt.Sprintf(`<html><body><main>
%s
<ul role="tablist"><li><button role="tab" aria-controls="Details">Details</button></li></ul>
<article data-location="show">
<section><header id="about"><h2>About</h2></header><div class="prose">Long form explanation.</div></section>
</article>
</main></body></html>`, header)
}

func TestStudyData(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/bunpro")
	defer cleanup()

	stats := statsPage(
		grammarSection(
			"Troubled Grammar",
			grammarTile("/grammar_points/te-shimau", "てしまう"),
			grammarTile("/grammar_points/nagara", "ながら"),
		),
		grammarSection(
			"Ghost Reviews",
			grammarTile("/grammar_points/kamoshirenai", "かもしれない"),
		),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, stats)
	})
	mux.HandleFunc("/grammar_points/te-shimau", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("〜てしまう", "To do something by accident, To finish completely"))
	})
	mux.HandleFunc("/grammar_points/nagara", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/grammar_points/kamoshirenai", func(w http.ResponseWriter, r *http.Request) {
		// detail page without the structure header
		fmt.Fprint(w, detailPage("", ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(t, server.URL, &sleeps)

	data, err := client.StudyData(context.Background())
	require.NoError(t, err)

	expected := StudyData{
		TroubledGrammar: []GrammarPoint{
			{
				Link: "/grammar_points/te-shimau",
				Text: "てしまう",
				Structure: &GrammarStructure{
					Japanese: "〜てしまう",
					Meaning:  "To do something by accident, To finish completely",
				},
			},
			{
				Link: "/grammar_points/nagara",
				Text: "ながら",
			},
		},
		GhostReviews: []GrammarPoint{
			{
				Link: "/grammar_points/kamoshirenai",
				Text: "かもしれない",
			},
		},
	}
	if diff := cmp.Diff(expected, data); diff != "" {
		t.Fatalf("study data mismatch (-want +got):\n%s", diff)
	}

	// one pause per grammar point, bare results included
	require.Len(t, sleeps, 3)
	for _, d := range sleeps {
		require.Equal(t, detailRequestDelay, d)
	}
}

func TestStudyDataEmptySections(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/bunpro")
	defer cleanup()

	detailRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage(
			grammarSection("Troubled Grammar"),
			grammarSection("Ghost Reviews"),
		))
	})
	mux.HandleFunc("/grammar_points/", func(w http.ResponseWriter, r *http.Request) {
		detailRequests++
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(t, server.URL, &sleeps)

	data, err := client.StudyData(context.Background())
	require.NoError(t, err)

	require.NotNil(t, data.TroubledGrammar)
	require.NotNil(t, data.GhostReviews)
	require.Empty(t, data.TroubledGrammar)
	require.Empty(t, data.GhostReviews)
	require.Zero(t, detailRequests)
	require.Empty(t, sleeps)
}

func TestStudyDataMissingSection(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/bunpro")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, statsPage(
			grammarSection("Troubled Grammar", grammarTile("/grammar_points/x", "x")),
		))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.StudyData(context.Background())
	require.ErrorIs(t, err, SectionNotFoundErr)
	require.Contains(t, err.Error(), "Ghost Reviews")
}

func TestStudyDataSessionExpired(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/bunpro")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/profile/stats", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users/sign_in", http.StatusFound)
	})
	mux.HandleFunc("/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, signInPage("tok-1"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.StudyData(context.Background())
	require.ErrorIs(t, err, SessionExpiredErr)
}
