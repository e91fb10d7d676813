package scraper

import (
	"context"
	"fmt"
	"os"
	"time"
)

const VENUE_PAGE_PATH = "./resources/venue_page.html"

// ScraperMock serves a venue page from disk instead of the network.
type ScraperMock struct {
	pagePath string
}

// NewScraperMock creates a new instance of ScraperMock
func NewScraperMock(pagePath string) *ScraperMock {
	if pagePath == "" {
		pagePath = VENUE_PAGE_PATH
	}
	return &ScraperMock{pagePath: pagePath}
}

func (s *ScraperMock) Scrape(ctx context.Context, weekStart time.Time) (*Sample, error) {
	page, err := os.ReadFile(s.pagePath)
	if err != nil {
		return nil, fmt.Errorf("could not read venue page fixture: %w", err)
	}
	return ParsePage(string(page), weekStart)
}
