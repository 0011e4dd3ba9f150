package bunpro

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"bunpro-assist/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var (
	// the sign in form was served but the anti-forgery token could not
	// be located, either the markup changed or the request was blocked
	AuthTokenNotFoundErr = fmt.Errorf("could not find authenticity token on the sign in page")
	// the account credentials were rejected, the user has to correct
	// them, retrying with the same input will never succeed
	InvalidCredentialsErr = fmt.Errorf("invalid email or password")
	// the sign in attempt was rejected without an error message
	LoginFailedErr = fmt.Errorf("failed to login to your account")
	// the cookie session is no longer authenticated, the caller should
	// login again rather than resend the same session
	SessionExpiredErr = fmt.Errorf("session is no longer authenticated")
)

type Credentials struct {
	Email    string
	Password string
}

// Client owns an exclusive cookie session against Bunpro. It is meant
// to be created fresh per harvest run and discarded afterwards, cookie
// state never outlives the process.
type Client struct {
	BaseUrl   *url.URL
	Http      *resty.Client
	selectors Selectors
	sleep     func(time.Duration)
}

type ClientOptions struct {
	BaseUrl string
	// Selectors overrides DefaultSelectors, used when the site markup moves
	Selectors *Selectors
	// Sleep overrides the pause taken between detail page requests,
	// tests inject a recording stub here
	Sleep func(time.Duration)
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	selectors := DefaultSelectors()
	if opts.Selectors != nil {
		selectors = *opts.Selectors
	}
	sleep := time.Sleep
	if opts.Sleep != nil {
		sleep = opts.Sleep
	}

	c := &Client{
		BaseUrl:   baseUrl,
		Http:      client,
		selectors: selectors,
		sleep:     sleep,
	}
	return c, nil
}

// reports whether the response, after following redirects, ended up
// back on the sign in page
func (c *Client) atSignIn(res *resty.Response) bool {
	raw := res.RawResponse
	if raw == nil || raw.Request == nil || raw.Request.URL == nil {
		return false
	}
	return raw.Request.URL.Path == c.selectors.SignInPath
}

// Login establishes an authenticated cookie session. A single attempt
// is made per call, retry policy is left to the caller.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.selectors.SignInPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch sign in page")
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse sign in page html")
		return err
	}

	token := doc.Find(c.selectors.AuthTokenInput).AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, AuthTokenNotFoundErr.Error())
		return AuthTokenNotFoundErr
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":               "✓",
			"authenticity_token": token,
			"user[email]":        creds.Email,
			"user[password]":     creds.Password,
			"user[remember_me]":  "1",
			"commit":             "Log in",
		}).
		Post(c.selectors.SignInPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	doc, err = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login response html")
		return err
	}

	// a rejected sign in renders with a 200, the flash container is the
	// only reliable signal and must not be mistaken for a transport error
	flash := doc.Find(c.selectors.ErrorFlash).Text()
	if strings.Contains(flash, c.selectors.InvalidCredentialsText) {
		span.SetStatus(codes.Error, InvalidCredentialsErr.Error())
		return InvalidCredentialsErr
	}

	if !res.IsSuccess() {
		err := fmt.Errorf("login failed with status %d", res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if c.atSignIn(res) {
		span.SetStatus(codes.Error, LoginFailedErr.Error())
		return LoginFailedErr
	}

	return nil
}
