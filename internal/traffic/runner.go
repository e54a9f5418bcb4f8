package traffic

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/triage/pkg/logger"
)

// issuePayload mirrors the server's issue response shape.
type issuePayload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	TopCandidates []struct {
		DeveloperID string  `json:"developer_id"`
		Score       float64 `json:"score"`
	} `json:"top_candidates"`
}

// sampleIssues pairs a title with a description that the keyword
// classifier maps to a known category.
var sampleIssues = []struct {
	title, description string
}{
	{"API returns 500 on update", "The REST endpoint for updating records responds with HTTP 500."},
	{"Login loop after refresh", "Users are bounced back to the login page; session token seems to expire immediately."},
	{"Slow query on reports page", "The reporting database query takes over 30 seconds under load."},
	{"Broken deploy pipeline", "The docker build step of the CI pipeline fails on the main branch."},
	{"Typo in getting-started guide", "The README has a typo in the installation documentation section."},
	{"Memory leak in exporter", "Memory usage grows without bound; looks like a leak in the metrics exporter."},
	{"XSS in comment field", "The comment form does not sanitize input; script injection is possible."},
	{"Flaky integration test", "The checkout integration test fails intermittently; assertion on totals is flaky."},
	{"Misaligned button on settings screen", "The save button overlaps the footer layout on small screens."},
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithDevelopers sets how many sample developers to seed.
func WithDevelopers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.developers = n
		}
	}
}

// WithIssues sets how many issue lifecycles to drive.
func WithIssues(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.issues = n
		}
	}
}

// WithConcurrency bounds the number of in-flight lifecycles.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSeed fixes the RNG for reproducible runs.
func WithSeed(seed int64) Option {
	return func(r *Runner) {
		r.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible sample data, not crypto
	}
}

// Runner seeds and drives the engine over HTTP.
type Runner struct {
	client      *Client
	developers  int
	issues      int
	concurrency int
	rng         *rand.Rand
	log         logger.Logger
}

// NewRunner creates a Runner against baseURL.
func NewRunner(baseURL string, opts ...Option) *Runner {
	r := &Runner{
		client:      NewClient(baseURL),
		developers:  5,
		issues:      20,
		concurrency: 4,
		rng:         rand.New(rand.NewSource(42)), //nolint:gosec // reproducible sample data, not crypto
		log:         logger.Named("traffic"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run seeds developers with activity, then drives issue lifecycles
// concurrently. The first error cancels the whole run.
func (r *Runner) Run(ctx context.Context) error {
	devs, err := r.seedDevelopers(ctx)
	if err != nil {
		return err
	}
	r.log.Info(ctx, "seeded developers", logger.Int("count", len(devs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := 0; i < r.issues; i++ {
		sample := sampleIssues[i%len(sampleIssues)]
		g.Go(func() error {
			return r.driveLifecycle(gctx, sample.title, sample.description)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("drive lifecycles: %w", err)
	}

	var summary struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	if err := r.client.get(ctx, "/dashboard/summary", &summary); err != nil {
		return err
	}
	r.log.Info(ctx, "run complete",
		logger.Int("issues", summary.Total),
		logger.Int("resolved", summary.ByStatus["resolved"]),
	)
	return nil
}

// seedDevelopers registers sample developers and reports commit
// activity for them so the ranker has signals to chew on.
func (r *Runner) seedDevelopers(ctx context.Context) ([]string, error) {
	categories := []string{
		"API", "Authentication", "Database", "DevOps", "Documentation",
		"Performance", "Security", "Testing", "UI",
	}

	devs := make([]string, r.developers)
	for i := range devs {
		devs[i] = fmt.Sprintf("dev-%d@example.com", i)
		body := map[string]string{
			"id":           devs[i],
			"display_name": fmt.Sprintf("Sample Developer %d", i),
		}
		if err := r.client.post(ctx, "/developers", body, nil); err != nil {
			return nil, fmt.Errorf("register %s: %w", devs[i], err)
		}

		// Each developer leans toward a couple of categories.
		for j := 0; j < 2; j++ {
			cat := categories[(i+j*3)%len(categories)]
			commits := 1 + r.rng.Intn(10)
			for c := 0; c < commits; c++ {
				event := map[string]string{
					"event_id":     uuid.New().String(),
					"developer_id": devs[i],
					"category":     cat,
					"kind":         "commit",
				}
				if err := r.client.post(ctx, "/activity", event, nil); err != nil {
					return nil, fmt.Errorf("seed activity for %s: %w", devs[i], err)
				}
			}
		}
	}
	return devs, nil
}

// driveLifecycle submits one issue and walks it to resolved, assigning
// the top-ranked candidate when the shortlist is non-empty.
func (r *Runner) driveLifecycle(ctx context.Context, title, description string) error {
	var issue issuePayload
	submit := map[string]string{
		"title":        title,
		"description":  description,
		"submitted_by": "pm@example.com",
	}
	if err := r.client.post(ctx, "/issues", submit, &issue); err != nil {
		return err
	}

	assignee := "dev-0@example.com"
	if len(issue.TopCandidates) > 0 {
		assignee = issue.TopCandidates[0].DeveloperID
	}

	base := "/issues/" + issue.ID
	if err := r.client.post(ctx, base+"/assign", map[string]string{"developer_id": assignee}, nil); err != nil {
		return err
	}
	if err := r.client.post(ctx, base+"/start", map[string]string{"caller_id": assignee}, nil); err != nil {
		return err
	}
	if err := r.client.post(ctx, base+"/done", map[string]string{"caller_id": assignee}, nil); err != nil {
		return err
	}
	if err := r.client.post(ctx, base+"/resolve", map[string]string{}, nil); err != nil {
		return err
	}
	return nil
}
