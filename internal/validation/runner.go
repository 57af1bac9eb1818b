package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

// Checker runs one automated check against a project.
type Checker interface {
	Name() CheckName
	Check(ctx context.Context, project *projects.Project) (Outcome, error)
}

// leveledZap adapts zap to the retryablehttp logger and demotes errors to
// warnings, since a retried failure is not yet a failure.
type leveledZap struct {
	inner *zap.SugaredLogger
}

func (l leveledZap) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Infow(msg, keysAndValues...)
}

func (l leveledZap) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debugw(msg, keysAndValues...)
}

// NewProviderClient builds the HTTP client used to reach check providers.
// It retries on connection errors and 5xx responses.
func NewProviderClient(logger *zap.Logger, retryMax int, timeout time.Duration) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZap{logger.Sugar()})
	client := retryClient.StandardClient()
	client.Timeout = timeout
	return client
}

// HTTPChecker posts the project to a provider that answers with an Outcome.
type HTTPChecker struct {
	name     CheckName
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPChecker(name CheckName, endpoint, apiKey string, client *http.Client) *HTTPChecker {
	return &HTTPChecker{name: name, endpoint: endpoint, apiKey: apiKey, client: client}
}

func (c *HTTPChecker) Name() CheckName { return c.name }

type checkRequest struct {
	ProjectID  string `json:"project_id"`
	Name       string `json:"name"`
	Website    string `json:"website"`
	Blockchain string `json:"blockchain"`
	AssetType  string `json:"asset_type"`
}

func (c *HTTPChecker) Check(ctx context.Context, project *projects.Project) (Outcome, error) {
	body, err := json.Marshal(checkRequest{
		ProjectID:  project.ID.String(),
		Name:       project.Name,
		Website:    project.Website,
		Blockchain: project.Blockchain,
		AssetType:  project.Type,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to encode %s check request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to build %s check request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s provider request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Outcome{}, fmt.Errorf("%s provider returned status %d", c.name, resp.StatusCode)
	}

	var outcome Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return Outcome{}, fmt.Errorf("failed to decode %s provider response: %w", c.name, err)
	}
	return outcome, nil
}

// Runner runs every configured checker concurrently.
type Runner struct {
	checkers []Checker
	logger   *zap.Logger
}

func NewRunner(logger *zap.Logger, checkers ...Checker) *Runner {
	return &Runner{checkers: checkers, logger: logger}
}

// Len is the number of configured checkers.
func (r *Runner) Len() int { return len(r.checkers) }

// Run returns one outcome per configured checker. A checker that fails is
// reported as a failed check carrying the error text.
func (r *Runner) Run(ctx context.Context, project *projects.Project) map[CheckName]Outcome {
	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	var mu sync.Mutex
	outcomes := make(map[CheckName]Outcome, len(r.checkers))

	eg := new(errgroup.Group)
	for _, checker := range r.checkers {
		checker := checker
		eg.Go(func() error {
			outcome, err := checker.Check(ctx, project)
			if err != nil {
				r.logger.Warn("Validation check failed",
					zap.String("check", string(checker.Name())),
					zap.String("project_id", project.ID.String()),
					zap.Error(err))
				outcome = Outcome{Passed: false, Details: "check failed: " + err.Error()}
			}

			label := "passed"
			if !outcome.Passed {
				label = "failed"
			}
			checksRun.WithLabelValues(string(checker.Name()), label).Inc()

			mu.Lock()
			outcomes[checker.Name()] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes
}
