package harness

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ethpandaops/e2e-harness/internal/ci"
	"github.com/playwright-community/playwright-go"
)

type fakeT struct {
	name string

	mu       sync.Mutex
	failed   bool
	skipped  bool
	errors   []string
	cleanups []func()
}

func newFakeT(name string) *fakeT {
	return &fakeT{name: name}
}

func (f *fakeT) Name() string { return f.name }

func (f *fakeT) Helper() {}

func (f *fakeT) Cleanup(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups = append(f.cleanups, fn)
}

func (f *fakeT) Failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failed
}

func (f *fakeT) Skipped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.skipped
}

func (f *fakeT) Errorf(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = true
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) Fatalf(format string, args ...any) {
	f.Errorf(format, args...)
}

func (f *fakeT) Logf(string, ...any) {}

func (f *fakeT) skip() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipped = true
}

// finish runs the registered cleanups the way the testing package does.
func (f *fakeT) finish() {
	f.mu.Lock()
	cleanups := f.cleanups
	f.cleanups = nil
	f.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

type fakeEngine struct {
	mu              sync.Mutex
	browsers        []*fakeBrowser
	launchErr       error
	contextCloseErr error
	stopped         bool
}

func (e *fakeEngine) Launch() (playwright.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.launchErr != nil {
		return nil, e.launchErr
	}

	b := &fakeBrowser{engine: e, connected: true}
	e.browsers = append(e.browsers, b)

	return b, nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true

	return nil
}

func (e *fakeEngine) launches() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.browsers)
}

type fakeBrowser struct {
	playwright.Browser

	engine    *fakeEngine
	connected bool
	closed    bool
	contexts  []*fakeContext
}

func (b *fakeBrowser) IsConnected() bool {
	return b.connected && !b.closed
}

func (b *fakeBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	c := &fakeContext{tracing: &fakeTracing{}, closeErr: b.engine.contextCloseErr}
	if len(options) > 0 && options[0].RecordVideo != nil {
		c.videoDir = options[0].RecordVideo.Dir
	}

	b.contexts = append(b.contexts, c)

	return c, nil
}

func (b *fakeBrowser) Close(...playwright.BrowserCloseOptions) error {
	b.closed = true

	return nil
}

// fakeContext writes the page video when it is closed, as the real engine
// only finalizes recordings then.
type fakeContext struct {
	playwright.BrowserContext

	tracing  *fakeTracing
	videoDir string
	page     *fakePage
	timeout  float64
	closed   bool
	closeErr error
}

func (c *fakeContext) Tracing() playwright.Tracing {
	return c.tracing
}

func (c *fakeContext) SetDefaultTimeout(timeout float64) {
	c.timeout = timeout
}

func (c *fakeContext) NewPage() (playwright.Page, error) {
	c.page = &fakePage{}
	if c.videoDir != "" {
		c.page.video = &fakeVideo{path: fmt.Sprintf("%s/%p.webm", c.videoDir, c)}
	}

	return c.page, nil
}

func (c *fakeContext) Close(...playwright.BrowserContextCloseOptions) error {
	c.closed = true

	if c.page != nil && c.page.video != nil {
		if err := os.WriteFile(c.page.video.path, []byte("webm"), 0o600); err != nil {
			return err
		}
	}

	return c.closeErr
}

type fakePage struct {
	playwright.Page

	video       *fakeVideo
	url         string
	closed      bool
	screenshots []string
}

func (p *fakePage) Video() playwright.Video {
	if p.video == nil {
		return nil
	}

	return p.video
}

func (p *fakePage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	data := []byte("png")

	if len(options) > 0 && options[0].Path != nil {
		p.screenshots = append(p.screenshots, *options[0].Path)

		if err := os.WriteFile(*options[0].Path, data, 0o600); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func (p *fakePage) Close(...playwright.PageCloseOptions) error {
	p.closed = true

	return nil
}

func (p *fakePage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.url = url

	return nil, nil
}

func (p *fakePage) URL() string {
	return p.url
}

type fakeVideo struct {
	playwright.Video

	path string
}

func (v *fakeVideo) Path() (string, error) {
	return v.path, nil
}

type fakeTracing struct {
	playwright.Tracing

	starts int
	stops  [][]string
	groups []string
}

func (f *fakeTracing) Start(...playwright.TracingStartOptions) error {
	f.starts++

	return nil
}

func (f *fakeTracing) Stop(path ...string) error {
	f.stops = append(f.stops, path)

	if len(path) > 0 {
		return os.WriteFile(path[0], []byte("trace"), 0o600)
	}

	return nil
}

func (f *fakeTracing) Group(name string, _ ...playwright.TracingGroupOptions) error {
	f.groups = append(f.groups, name)

	return nil
}

func (f *fakeTracing) GroupEnd() error { return nil }

type fakeCI struct {
	mu          sync.Mutex
	runName     string
	results     []ci.Result
	attachments map[string][]string
	completed   bool
}

func (f *fakeCI) StartRun(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runName = name

	return nil
}

func (f *fakeCI) PublishResult(_ context.Context, result ci.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result)

	return nil
}

func (f *fakeCI) AttachFile(ctx context.Context, testName, path string) error {
	return f.AttachFiles(ctx, testName, []string{path})
}

func (f *fakeCI) AttachFiles(_ context.Context, testName string, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.attachments == nil {
		f.attachments = map[string][]string{}
	}

	f.attachments[testName] = append(f.attachments[testName], paths...)

	return nil
}

func (f *fakeCI) CompleteRun(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true

	return nil
}

func (f *fakeCI) RunID() string { return "42" }

func (f *fakeCI) Enabled() bool { return true }

// Compile-time interface compliance check
var _ ci.Reporter = (*fakeCI)(nil)
