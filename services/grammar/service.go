package grammar

import (
	"context"

	"bunpro-assist/lib/scrapers/bunpro"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/grammar")

const defaultBaseUrl = "https://bunpro.jp"

// Service runs the full harvest: login, scrape, persist. Each Refresh
// builds a fresh scraper client so the cookie session is owned by
// exactly one run and dies with it.
type Service struct {
	client bunpro.ClientOptions
	store  Store
}

type ServiceOptions struct {
	// Client configures the scraper, BaseUrl defaults to the live site
	Client bunpro.ClientOptions
	Store  Store
}

func NewService(opts ServiceOptions) Service {
	if opts.Client.BaseUrl == "" {
		opts.Client.BaseUrl = defaultBaseUrl
	}
	return Service{
		client: opts.Client,
		store:  opts.Store,
	}
}

// Refresh harvests the account's study data and replaces the snapshot.
// Authentication and summary parsing failures abort before anything is
// written, so a failed run leaves the previous snapshot untouched.
func (s Service) Refresh(ctx context.Context, creds bunpro.Credentials) (bunpro.StudyData, error) {
	ctx, span := tracer.Start(ctx, "service:Refresh")
	defer span.End()

	client, err := bunpro.NewClient(ctx, s.client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create scraper client")
		return bunpro.StudyData{}, err
	}

	err = client.Login(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to login")
		return bunpro.StudyData{}, err
	}

	data, err := client.StudyData(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to scrape study data")
		return bunpro.StudyData{}, err
	}

	err = s.store.Save(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save snapshot")
		return bunpro.StudyData{}, err
	}

	span.SetAttributes(
		attribute.Int("troubled_grammar", len(data.TroubledGrammar)),
		attribute.Int("ghost_reviews", len(data.GhostReviews)),
	)
	return data, nil
}

// Data loads the currently persisted snapshot.
func (s Service) Data(ctx context.Context) (bunpro.StudyData, error) {
	return s.store.Load()
}
