//go:build e2e

package e2e

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethpandaops/e2e-harness/e2e/pages"
	"github.com/ethpandaops/e2e-harness/internal/harness"
)

func TestNavigation_GetStarted(t *testing.T) {
	suite.Run(t, func(s *harness.Session) {
		home := pages.NewHomePage(s.Logger(), s.Page(), s.Settings())

		var docs *pages.DocsPage

		s.Step("open home page", func() {
			s.Require(home.Open())
		})

		s.Step("follow get started", func() {
			var err error
			docs, err = home.GetStarted()
			s.Require(err)
		})

		s.Step("verify intro heading", func() {
			heading, err := docs.Heading()
			s.Require(err)

			if !strings.Contains(heading, "Installation") {
				s.Check(fmt.Errorf("unexpected heading %q", heading))
			}
		})
	})
}
