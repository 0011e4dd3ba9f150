package grammar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bunpro-assist/lib/scrapers/bunpro"
	"bunpro-assist/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// a minimal but structurally faithful rendition of the site: sign in
// form, profile stats page and one grammar point detail page
func newBunproFixture(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `<html><body><form action="/users/sign_in" method="post">
<input type="hidden" name="authenticity_token" value="tok-1" />
</form></body></html>`)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("user[password]") != "hunter2" {
			fmt.Fprint(w, `<html><body><div class="alert">Invalid Email or password.</div></body></html>`)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>dashboard</body></html>")
	})
	mux.HandleFunc("/user/profile/stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<div class="upro-wrapper_gp-tiles"><p>Troubled Grammar</p>
<div class="user-profile-grammar-tile"><a href="/grammar_points/te-shimau"><p>てしまう</p></a></div>
</div>
<div class="upro-wrapper_gp-tiles"><p>Ghost Reviews</p></div>
</body></html>`)
	})
	mux.HandleFunc("/grammar_points/te-shimau", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><main>
<div id="js-rev-header"><span class="bp-ddw">〜てしまう</span><span class="text-body">To do something by accident</span></div>
</main></body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestServiceRefresh(t *testing.T) {
	cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/grammar"})
	defer cleanup()

	server := newBunproFixture(t)
	store := NewStore(filepath.Join(t.TempDir(), "bunpro_data.json"))
	service := NewService(ServiceOptions{
		Client: bunpro.ClientOptions{
			BaseUrl: server.URL,
			Sleep:   func(time.Duration) {},
		},
		Store: store,
	})

	data, err := service.Refresh(context.Background(), bunpro.Credentials{
		Email:    "student@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	expected := bunpro.StudyData{
		TroubledGrammar: []bunpro.GrammarPoint{
			{
				Link: "/grammar_points/te-shimau",
				Text: "てしまう",
				Structure: &bunpro.GrammarStructure{
					Japanese: "〜てしまう",
					Meaning:  "To do something by accident",
				},
			},
		},
		GhostReviews: []bunpro.GrammarPoint{},
	}
	if diff := cmp.Diff(expected, data); diff != "" {
		t.Fatalf("refresh result mismatch (-want +got):\n%s", diff)
	}

	// the snapshot read back through Data matches what Refresh returned
	persisted, err := service.Data(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(data, persisted); diff != "" {
		t.Fatalf("persisted snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceRefreshBadCredentials(t *testing.T) {
	cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "services/grammar"})
	defer cleanup()

	server := newBunproFixture(t)
	store := NewStore(filepath.Join(t.TempDir(), "bunpro_data.json"))
	service := NewService(ServiceOptions{
		Client: bunpro.ClientOptions{
			BaseUrl: server.URL,
			Sleep:   func(time.Duration) {},
		},
		Store: store,
	})

	_, err := service.Refresh(context.Background(), bunpro.Credentials{
		Email:    "student@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, bunpro.InvalidCredentialsErr)

	// a failed run must not create a snapshot
	_, err = service.Data(context.Background())
	require.ErrorIs(t, err, NoSnapshotErr)
}
