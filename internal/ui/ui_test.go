package ui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	playwright.Locator

	mu       sync.Mutex
	selector string
	visible  bool
	attached bool
	text     string
	attrs    map[string]string
	waitErr  error
	clicks   int
	filled   string
	timeouts []float64
	checks   int
	hideAt   int
}

func (l *fakeLocator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.waitErr != nil {
		return l.waitErr
	}

	state := playwright.WaitForSelectorStateVisible
	if len(options) > 0 {
		if options[0].State != nil {
			state = options[0].State
		}

		if options[0].Timeout != nil {
			l.timeouts = append(l.timeouts, *options[0].Timeout)
		}
	}

	ok := false

	switch *state {
	case *playwright.WaitForSelectorStateVisible:
		ok = l.visible
	case *playwright.WaitForSelectorStateAttached:
		ok = l.attached || l.visible
	case *playwright.WaitForSelectorStateHidden:
		ok = !l.visible
	case *playwright.WaitForSelectorStateDetached:
		ok = !l.attached && !l.visible
	}

	if !ok {
		return fmt.Errorf("%w: waiting for %s", playwright.ErrTimeout, l.selector)
	}

	return nil
}

func (l *fakeLocator) Click(...playwright.LocatorClickOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clicks++

	return nil
}

func (l *fakeLocator) Fill(value string, _ ...playwright.LocatorFillOptions) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.filled = value

	return nil
}

func (l *fakeLocator) TextContent(...playwright.LocatorTextContentOptions) (string, error) {
	return l.text, nil
}

func (l *fakeLocator) GetAttribute(name string, _ ...playwright.LocatorGetAttributeOptions) (string, error) {
	return l.attrs[name], nil
}

func (l *fakeLocator) IsVisible(...playwright.LocatorIsVisibleOptions) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checks++
	if l.hideAt > 0 && l.checks >= l.hideAt {
		l.visible = false
	}

	return l.visible, nil
}

type fakePage struct {
	mu          sync.Mutex
	locators    map[string]*fakeLocator
	url         string
	visited     []string
	loadStates  []playwright.LoadState
	urlTimeouts []float64
}

func newFakePage() *fakePage {
	return &fakePage{locators: map[string]*fakeLocator{}}
}

func (p *fakePage) add(selector string, l *fakeLocator) *fakeLocator {
	l.selector = selector
	p.locators[selector] = l

	return l
}

func (p *fakePage) Locator(selector string, _ ...playwright.PageLocatorOptions) playwright.Locator {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.locators[selector]; ok {
		return l
	}

	l := &fakeLocator{selector: selector}
	p.locators[selector] = l

	return l
}

func (p *fakePage) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	p.loadStates = append(p.loadStates, *options[0].State)

	return nil
}

func (p *fakePage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.visited = append(p.visited, url)
	p.url = url

	return nil, nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.url
}

func (p *fakePage) WaitForURL(match interface{}, options ...playwright.PageWaitForURLOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(options) > 0 && options[0].Timeout != nil {
		p.urlTimeouts = append(p.urlTimeouts, *options[0].Timeout)
	}

	var ok bool

	switch m := match.(type) {
	case string:
		ok = strings.HasSuffix(p.url, strings.TrimPrefix(m, "**"))
	case *regexp.Regexp:
		ok = m.MatchString(p.url)
	case func(string) bool:
		ok = m(p.url)
	default:
		return fmt.Errorf("unsupported url matcher %T", match)
	}

	if !ok {
		return fmt.Errorf("%w: waiting for url", playwright.ErrTimeout)
	}

	return nil
}

func (p *fakePage) setURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.url = url
}

func testSettings() *config.TestSettings {
	settings := config.Defaults()
	settings.Timeouts.Element = 1500
	settings.Environment.BaseURL = "https://shop.example.com/"

	return settings
}

func TestInteractor_ScopedActions(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	button := page.add("#login button.submit", &fakeLocator{visible: true})
	input := page.add("#login input[name=user]", &fakeLocator{visible: true})
	page.add("#login .title", &fakeLocator{visible: true, text: "Sign in"})
	page.add("#login .badge", &fakeLocator{visible: true, attrs: map[string]string{"class": "badge  active"}})

	ui := NewInteractor(logrus.New(), page, testSettings()).Scoped("#login")

	require.NoError(t, ui.Fill("input[name=user]", "ada"))
	require.NoError(t, ui.Click("button.submit"))

	text, err := ui.Text(".title")
	require.NoError(t, err)
	assert.Equal(t, "Sign in", text)

	active, err := ui.HasClass(".badge", "active")
	require.NoError(t, err)
	assert.True(t, active)

	inactive, err := ui.HasClass(".badge", "act")
	require.NoError(t, err)
	assert.False(t, inactive)

	assert.Equal(t, 1, button.clicks)
	assert.Equal(t, "ada", input.filled)
	require.NotEmpty(t, button.timeouts)
	assert.InDelta(t, 1500, button.timeouts[0], 0)
}

func TestInteractor_VisibilityProbes(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.add(".shown", &fakeLocator{visible: true})
	page.add(".hidden-but-attached", &fakeLocator{attached: true})
	page.add(".broken", &fakeLocator{waitErr: errors.New("target closed")})

	ui := NewInteractor(logrus.New(), page, testSettings())

	visible, err := ui.IsVisible(".shown")
	require.NoError(t, err)
	assert.True(t, visible)

	visible, err = ui.IsVisible(".hidden-but-attached")
	require.NoError(t, err)
	assert.False(t, visible)

	present, err := ui.IsPresent(".hidden-but-attached")
	require.NoError(t, err)
	assert.True(t, present)

	present, err = ui.IsPresent(".missing")
	require.NoError(t, err)
	assert.False(t, present)

	_, err = ui.IsVisible(".broken")
	require.Error(t, err)

	err = ui.Click(".missing")
	require.ErrorIs(t, err, playwright.ErrTimeout)
}

func TestInteractor_LoadStates(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	ui := NewInteractor(logrus.New(), page, testSettings())

	require.NoError(t, ui.WaitForNetworkIdle())
	require.NoError(t, ui.WaitForDOMContentLoaded())

	assert.Equal(t, []playwright.LoadState{*playwright.LoadStateNetworkidle, *playwright.LoadStateDomcontentloaded}, page.loadStates)
}

func TestComponent_RootVisibility(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.add("nav.main", &fakeLocator{visible: true})
	link := page.add("nav.main a.home", &fakeLocator{visible: true})

	nav := NewComponent(logrus.New(), page, testSettings(), "nav.main")

	visible, err := nav.IsVisible()
	require.NoError(t, err)
	assert.True(t, visible)
	require.NoError(t, nav.WaitUntilVisible())
	require.NoError(t, nav.Click("a.home"))
	assert.Equal(t, 1, link.clicks)
	assert.Equal(t, "nav.main", nav.Root())

	footer := NewComponent(logrus.New(), page, testSettings(), "footer")
	visible, err = footer.IsVisible()
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestNavigator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		path string
		want string
	}{
		{base: "https://shop.example.com/", path: "/cart", want: "https://shop.example.com/cart"},
		{base: "https://shop.example.com", path: "cart", want: "https://shop.example.com/cart"},
		{base: "https://shop.example.com//", path: "//cart/items", want: "https://shop.example.com/cart/items"},
		{base: "https://shop.example.com", path: "", want: "https://shop.example.com/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.path))
	}

	page := newFakePage()
	nav := NewNavigator(logrus.New(), page, testSettings())

	require.NoError(t, nav.NavigateTo("/products"))
	assert.Equal(t, []string{"https://shop.example.com/products"}, page.visited)
	assert.Equal(t, "https://shop.example.com/products", nav.URL())
}

func TestWaitForElementNotVisible(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	spinner := page.add(".spinner", &fakeLocator{visible: true, hideAt: 3})
	opts := WaitOptions{Timeout: 50 * time.Millisecond, Interval: 5 * time.Millisecond}

	require.NoError(t, WaitForElementNotVisible(context.Background(), logrus.New(), page, ".spinner", opts))
	assert.Equal(t, 3, spinner.checks)

	page.add(".stuck", &fakeLocator{visible: true})
	err := WaitForElementNotVisible(context.Background(), logrus.New(), page, ".stuck", opts)
	require.ErrorIs(t, err, errStillVisible)
}

func TestWaitForURL(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.setURL("https://shop.example.com/dashboard")
	opts := WaitOptions{Timeout: 2 * time.Second}

	require.NoError(t, WaitForURL(page, "**/dashboard", opts))
	require.NoError(t, WaitForURL(page, regexp.MustCompile(`/dash`), opts))
	require.NoError(t, WaitForURL(page, func(u string) bool {
		return strings.HasPrefix(u, "https://shop.example.com")
	}, opts))
	assert.Equal(t, []float64{2000, 2000, 2000}, page.urlTimeouts)

	err := WaitForURL(page, "**/checkout", opts)
	require.ErrorIs(t, err, ErrConditionNotMet)
	require.ErrorIs(t, err, playwright.ErrTimeout)
	assert.Contains(t, err.Error(), "https://shop.example.com/dashboard")

	err = WaitForURL(page, 42, opts)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConditionNotMet)
}

func TestWaitForCondition(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WaitForCondition(context.Background(), logrus.New(), "cart has items", func(context.Context) (bool, error) {
		calls++

		return calls == 2, nil
	}, WaitOptions{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	err = WaitForCondition(context.Background(), logrus.New(), "never", func(context.Context) (bool, error) {
		return false, nil
	}, WaitOptions{Timeout: 10 * time.Millisecond, Interval: 5 * time.Millisecond})
	require.ErrorIs(t, err, ErrConditionNotMet)
	assert.Contains(t, err.Error(), "never")
}
