// Package pages holds the page objects of the sample suite.
package pages

import (
	"strings"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/ethpandaops/e2e-harness/internal/ui"
	"github.com/sirupsen/logrus"
)

const (
	getStartedLink = "text=Get Started"
	heading        = "h1 >> nth=0"
	introPath      = "/docs/intro"
)

// HomePage is the landing page of the documentation site.
type HomePage struct {
	*ui.Component

	nav *ui.Navigator
}

// NewHomePage creates the landing page object.
func NewHomePage(log logrus.FieldLogger, page ui.Page, settings *config.TestSettings) *HomePage {
	return &HomePage{
		Component: ui.NewComponent(log, page, settings, "body"),
		nav:       ui.NewNavigator(log, page, settings),
	}
}

// Open loads the landing page and waits for the call to action.
func (p *HomePage) Open() error {
	if err := p.nav.NavigateTo("/"); err != nil {
		return err
	}

	return p.WaitFor(getStartedLink, ui.StateVisible)
}

// GetStarted follows the call to action and waits for the intro page.
func (p *HomePage) GetStarted() (*DocsPage, error) {
	if err := p.Click(getStartedLink); err != nil {
		return nil, err
	}

	err := ui.WaitForURL(p.Page(), "**"+introPath, ui.DefaultWaitOptions())
	if err != nil {
		return nil, err
	}

	return &DocsPage{Interactor: p.Interactor}, nil
}

// DocsPage is a documentation article.
type DocsPage struct {
	*ui.Interactor
}

// Heading returns the article title.
func (p *DocsPage) Heading() (string, error) {
	text, err := p.Text(heading)

	return strings.TrimSpace(text), err
}
