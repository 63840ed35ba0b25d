package ci

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	apiVersion        = "7.0"
	stateCompleted    = "Completed"
	attachmentType    = "GeneralAttachment"
	maxParallelUpload = 4
	requestTimeout    = 60 * time.Second
)

var (
	errUnexpectedStatus = errors.New("unexpected status from azure devops")
	errMissingRunID     = errors.New("azure devops returned a run without id")
)

type runRequest struct {
	Name      string `json:"name"`
	Automated bool   `json:"automated"`
	Plan      idRef  `json:"plan"`
	TestSuite idRef  `json:"testSuite"`
}

type idRef struct {
	ID int `json:"id"`
}

type runResponse struct {
	ID json.Number `json:"id"`
}

type resultRequest struct {
	TestCaseTitle     string  `json:"testCaseTitle"`
	AutomatedTestName string  `json:"automatedTestName"`
	Outcome           string  `json:"outcome"`
	DurationInMs      float64 `json:"durationInMs"`
	ErrorMessage      *string `json:"errorMessage"`
	State             string  `json:"state"`
}

type attachmentRequest struct {
	Stream         string `json:"stream"`
	FileName       string `json:"fileName"`
	Comment        string `json:"comment"`
	AttachmentType string `json:"attachmentType"`
}

type stateRequest struct {
	State string `json:"state"`
}

// AzureDevOps talks to the Azure DevOps test runs REST API.
type AzureDevOps struct {
	log      logrus.FieldLogger
	settings config.AzureDevOpsSettings
	http     *http.Client
	baseURL  string
	auth     string

	mu    sync.RWMutex
	runID string
}

// NewAzureDevOps creates a reporter. A nil httpClient uses a client with a
// one minute timeout.
func NewAzureDevOps(log logrus.FieldLogger, settings config.AzureDevOpsSettings, httpClient *http.Client) *AzureDevOps {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &AzureDevOps{
		log:      log.WithField("component", "azure_devops"),
		settings: settings,
		http:     httpClient,
		baseURL:  strings.TrimRight(settings.OrganizationURL, "/") + "/" + settings.ProjectName + "/_apis/test/runs",
		auth:     "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+settings.PersonalAccessToken)),
	}
}

func (a *AzureDevOps) Enabled() bool {
	return true
}

func (a *AzureDevOps) RunID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.runID
}

// StartRun creates an automated run against the configured plan and suite.
func (a *AzureDevOps) StartRun(ctx context.Context, name string) error {
	var resp runResponse

	err := a.call(ctx, http.MethodPost, a.baseURL, runRequest{
		Name:      name,
		Automated: true,
		Plan:      idRef{ID: a.settings.TestPlanID},
		TestSuite: idRef{ID: a.settings.TestSuiteID},
	}, &resp)
	if err != nil {
		a.log.WithError(err).Error("failed to create test run")

		return fmt.Errorf("creating test run: %w", err)
	}

	if resp.ID == "" {
		return errMissingRunID
	}

	a.mu.Lock()
	a.runID = resp.ID.String()
	a.mu.Unlock()

	a.log.WithField("run_id", resp.ID).Info("test run created")

	return nil
}

// PublishResult records one completed test in the run.
func (a *AzureDevOps) PublishResult(ctx context.Context, result Result) error {
	runID := a.RunID()
	if runID == "" {
		return nil
	}

	req := resultRequest{
		TestCaseTitle:     result.TestName,
		AutomatedTestName: result.AutomatedTestName,
		Outcome:           string(result.Outcome),
		DurationInMs:      float64(result.Duration) / float64(time.Millisecond),
		State:             stateCompleted,
	}

	if req.AutomatedTestName == "" {
		req.AutomatedTestName = result.TestName
	}

	if req.Outcome == "" {
		req.Outcome = "NotExecuted"
	}

	if result.ErrorMessage != "" {
		msg := result.ErrorMessage
		req.ErrorMessage = &msg
	}

	if err := a.call(ctx, http.MethodPost, a.runURL(runID, "results"), []resultRequest{req}, nil); err != nil {
		a.log.WithError(err).WithField("test", result.TestName).Error("failed to publish test result")

		return fmt.Errorf("publishing result for %s: %w", result.TestName, err)
	}

	a.log.WithField("test", result.TestName).Info("test result published")

	return nil
}

// AttachFile uploads path to the run as a base64 attachment.
func (a *AzureDevOps) AttachFile(ctx context.Context, testName, path string) error {
	runID := a.RunID()
	if runID == "" {
		return nil
	}

	// #nosec G304 -- artifact paths are produced by the harness
	content, err := os.ReadFile(path)
	if err != nil {
		a.log.WithError(err).WithField("path", path).Error("failed to read attachment")

		return fmt.Errorf("reading attachment %s: %w", path, err)
	}

	req := attachmentRequest{
		Stream:         base64.StdEncoding.EncodeToString(content),
		FileName:       filepath.Base(path),
		Comment:        "Attachment for test: " + testName,
		AttachmentType: attachmentType,
	}

	if err := a.call(ctx, http.MethodPost, a.runURL(runID, "attachments"), req, nil); err != nil {
		a.log.WithError(err).WithField("path", path).Error("failed to attach file to test run")

		return fmt.Errorf("attaching %s: %w", req.FileName, err)
	}

	a.log.WithField("file", req.FileName).Info("file attached to test run")

	return nil
}

// AttachFiles uploads paths concurrently. One failed upload does not cancel
// the others; every failure is joined into the result.
func (a *AzureDevOps) AttachFiles(ctx context.Context, testName string, paths []string) error {
	if a.RunID() == "" || len(paths) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	g.SetLimit(maxParallelUpload)

	for _, path := range paths {
		g.Go(func() error {
			err := a.AttachFile(ctx, testName, path)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Join(errs...)
	}

	return nil
}

// CompleteRun marks the run completed.
func (a *AzureDevOps) CompleteRun(ctx context.Context) error {
	runID := a.RunID()
	if runID == "" {
		return nil
	}

	if err := a.call(ctx, http.MethodPatch, a.runURL(runID, ""), stateRequest{State: stateCompleted}, nil); err != nil {
		a.log.WithError(err).WithField("run_id", runID).Error("failed to complete test run")

		return fmt.Errorf("completing test run %s: %w", runID, err)
	}

	a.log.WithField("run_id", runID).Info("test run completed")

	return nil
}

func (a *AzureDevOps) runURL(runID, sub string) string {
	u := a.baseURL + "/" + runID
	if sub != "" {
		u += "/" + sub
	}

	return u
}

func (a *AzureDevOps) call(ctx context.Context, method, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?api-version="+apiVersion, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", a.auth)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("%w: %s %s returned %s: %s", errUnexpectedStatus, method, endpoint, resp.Status, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// Compile-time interface compliance check
var _ Reporter = (*AzureDevOps)(nil)
