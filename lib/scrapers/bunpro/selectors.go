package bunpro

// Selectors holds every marker the scraper depends on: paths, CSS
// selectors and the literal label texts used to classify sections.
// Bunpro has no public API so all of this is tied to the current
// markup; keeping it in one swappable value means markup drift is a
// configuration change rather than a code change.
type Selectors struct {
	SignInPath string
	StatsPath  string

	// hidden anti-forgery token input on the sign in form
	AuthTokenInput string
	// container rendered on a rejected sign in attempt
	ErrorFlash string
	// literal text inside ErrorFlash on bad credentials
	InvalidCredentialsText string

	// grammar section containers on the profile stats page
	Section      string
	SectionLabel string
	// section label texts, matched exactly
	TroubledGrammarLabel string
	GhostReviewsLabel    string

	// tiles within a section
	Tile       string
	TileAnchor string
	TileLabel  string

	// detail page markers
	DetailMain     string
	DetailHeader   string
	DetailJapanese string
	DetailMeaning  string
	DetailTabList  string
	DetailTab      string
	DetailArticle  string
	AboutHeader    string
	AboutProse     string
}

func DefaultSelectors() Selectors {
	return Selectors{
		SignInPath: "/users/sign_in",
		StatsPath:  "/user/profile/stats",

		AuthTokenInput:         "input[name=authenticity_token]",
		ErrorFlash:             "div.alert",
		InvalidCredentialsText: "Invalid Email or password.",

		Section:              "div.upro-wrapper_gp-tiles",
		SectionLabel:         "p",
		TroubledGrammarLabel: "Troubled Grammar",
		GhostReviewsLabel:    "Ghost Reviews",

		Tile:       "div.user-profile-grammar-tile",
		TileAnchor: "a",
		TileLabel:  "p",

		DetailMain:     "main",
		DetailHeader:   "#js-rev-header",
		DetailJapanese: "span.bp-ddw",
		DetailMeaning:  "span.text-body",
		DetailTabList:  "ul[role=tablist]",
		DetailTab:      "button[role=tab][aria-controls=Details]",
		DetailArticle:  "article[data-location=show]",
		AboutHeader:    "header#about",
		AboutProse:     "div.prose",
	}
}
