// Package scraper reads live occupancy and opening hours from the venue's
// public page.
package scraper

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"occupancy-forecaster/api"
	"occupancy-forecaster/models"
)

// Sample is what one scrape yields.
type Sample struct {
	Occupancy int
	Schedule  models.WeeklySchedule
}

// VenueScraper fetches a Sample; the schedule is attributed to weekStart.
type VenueScraper interface {
	Scrape(ctx context.Context, weekStart time.Time) (*Sample, error)
}

// HTTPScraper downloads the venue page and extracts a Sample from it.
type HTTPScraper struct {
	client    *api.HTTPClient
	userAgent string
}

func NewHTTPScraper(client *api.HTTPClient, userAgent string) *HTTPScraper {
	return &HTTPScraper{client: client, userAgent: userAgent}
}

func (s *HTTPScraper) Scrape(ctx context.Context, weekStart time.Time) (*Sample, error) {
	headers := map[string]string{}
	if s.userAgent != "" {
		headers["User-Agent"] = s.userAgent
	}
	page, err := s.client.RequestRaw(ctx, "GET", "", headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue page: %w", err)
	}
	return ParsePage(string(page), weekStart)
}

// ParsePage extracts occupancy and schedule from a page body.
func ParsePage(page string, weekStart time.Time) (*Sample, error) {
	occupancy, err := ExtractOccupancy(page)
	if err != nil {
		return nil, err
	}
	schedule, err := ExtractSchedule(page, weekStart)
	if err != nil {
		return nil, err
	}
	return &Sample{Occupancy: occupancy, Schedule: schedule}, nil
}

// RateLimitedScraper spaces out requests to the wrapped scraper.
type RateLimitedScraper struct {
	next    VenueScraper
	limiter *rate.Limiter
}

func NewRateLimitedScraper(next VenueScraper, requestsPerSecond float64, burst int) *RateLimitedScraper {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedScraper{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (r *RateLimitedScraper) Scrape(ctx context.Context, weekStart time.Time) (*Sample, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Scrape(ctx, weekStart)
}
