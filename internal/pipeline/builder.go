package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"brevity/internal/config"
	"brevity/internal/feeds"
	"brevity/internal/fetch"
	"brevity/internal/llm"
	"brevity/internal/logger"
	"brevity/internal/normalize"
	"brevity/internal/summarize"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	config     *config.Config
	completer  llm.Completer
	fetcher    fetch.PageFetcher
	httpClient *http.Client
	log        *slog.Logger
	opts       []Option
}

// NewBuilder creates a new pipeline builder
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{config: cfg, log: logger.Get()}
}

// WithCompleter sets the completion client instead of building one from
// the ai config section
func (b *Builder) WithCompleter(c llm.Completer) *Builder {
	b.completer = c
	return b
}

// WithPageFetcher replaces the HTTP page fetcher shared by all adapters
func (b *Builder) WithPageFetcher(f fetch.PageFetcher) *Builder {
	b.fetcher = f
	return b
}

// WithHTTPClient sets the client used for JSON APIs and feeds
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithLogger sets the logger handed to every component
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	if log != nil {
		b.log = log
	}
	return b
}

// WithOptions appends pipeline options
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build constructs a fully configured Pipeline
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	if b.config == nil {
		return nil, errors.New("configuration is required")
	}
	cfg := b.config

	completer := b.completer
	if completer == nil {
		if err := cfg.ValidateForAnalysis(); err != nil {
			return nil, err
		}
		c, err := llm.NewCompleter(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion client: %w", err)
		}
		completer = c
	}

	router, err := b.buildRouter(ctx)
	if err != nil {
		return nil, err
	}

	normalizer := normalize.New(normalize.Limits{
		MaxLength: cfg.Pipeline.MaxContentLength,
		MinLength: cfg.Pipeline.MinContentLength,
	})
	requester := summarize.NewRequester(completer, summarize.Options{
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Log:         b.log,
	})

	opts := append([]Option{WithLogger(b.log)}, b.opts...)
	return NewPipeline(router, normalizer, requester, opts...), nil
}

func (b *Builder) buildRouter(ctx context.Context) (*fetch.Router, error) {
	cfg := b.config
	src := cfg.Sources
	minLength := cfg.Pipeline.MinExtractLength

	client := b.httpClient
	if client == nil {
		client = &http.Client{Timeout: cfg.SourcesTimeout()}
	}

	pages := b.fetcher
	if pages == nil {
		pages = fetch.NewHTTPFetcher(fetch.HTTPOptions{
			UserAgent:    src.UserAgent,
			Timeout:      cfg.SourcesTimeout(),
			MaxBodyBytes: src.MaxBodyBytes,
			Client:       client,
		})
	}

	metadata := fetch.MetadataChain{}
	if src.YouTube.APIKey != "" {
		dataAPI, err := fetch.NewDataAPIMetadata(ctx, src.YouTube.APIKey, src.YouTube.DataAPIURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube Data API client: %w", err)
		}
		metadata = append(metadata, dataAPI)
	}
	metadata = append(metadata, fetch.NewOEmbedMetadata(pages, src.YouTube.OEmbedURL, src.YouTube.WatchURL))

	video := fetch.NewVideoAdapter(
		fetch.NewWatchPageTranscripts(pages, src.YouTube.WatchURL, src.YouTube.Language),
		metadata,
		pages,
		fetch.VideoOptions{WatchURL: src.YouTube.WatchURL, MinLength: minLength, Log: b.log},
	)

	spotify := fetch.NewSpotifyAdapter(pages, fetch.SpotifyOptions{
		ClientID:     src.Spotify.ClientID,
		ClientSecret: src.Spotify.ClientSecret,
		Market:       src.Spotify.Market,
		TokenURL:     src.Spotify.TokenURL,
		APIBaseURL:   src.Spotify.APIBaseURL,
		MinLength:    minLength,
		HTTPClient:   client,
		Log:          b.log,
	})

	apple := fetch.NewApplePodcastAdapter(
		feeds.NewITunesDirectory(client, src.ITunes.LookupURL),
		feeds.NewFeedManager(client, src.UserAgent),
		pages,
		minLength,
		b.log,
	)

	web := fetch.NewWebAdapter(pages, minLength, b.log)

	return fetch.NewRouter(video, spotify, apple, web), nil
}
