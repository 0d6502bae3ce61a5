// Package claimgen produces plausible fake claims for demos and load.
package claimgen

import (
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/claimbridge/claimbridge/internal/domain"
)

const (
	minSummaryWords  = 8
	maxSummaryWords  = 15
	detailParagraphs = 3
	recentWindow     = 30 * 24 * time.Hour
)

// Generator is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

// New returns a generator. A zero seed picks a random one.
func New(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		now:   time.Now,
	}
}

// WithClock pins the reference time used for claim dates.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) Claim() domain.CreateClaimInput {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.faker
	end := g.now().UTC()
	start := end.Add(-recentWindow)

	status := domain.ClaimStatuses[f.IntRange(0, len(domain.ClaimStatuses)-1)]

	paragraphs := make([]string, 0, detailParagraphs)
	for range detailParagraphs {
		paragraphs = append(paragraphs, f.LoremIpsumParagraph(1, f.IntRange(3, 6), f.IntRange(8, 14), " "))
	}

	return domain.CreateClaimInput{
		ClaimantName: f.Name(),
		Date:         f.DateRange(start, end).Format(domain.DateLayout),
		Status:       status,
		Summary:      f.LoremIpsumSentence(f.IntRange(minSummaryWords, maxSummaryWords)),
		Details:      strings.Join(paragraphs, "\n\n"),
	}
}
