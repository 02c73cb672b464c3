// Package notifications holds the step definitions for checking the alerts
// a caller received.
package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e test context these steps need.
type TestContext interface {
	GET(path string) error
	ResponseList() ([]map[string]any, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &notificationSteps{tc: tc}

	ctx.Step(`^I should have (\d+) notifications?$`, steps.notificationCount)
	ctx.Step(`^my latest notification message should contain "([^"]*)"$`, steps.latestMessageContains)
}

type notificationSteps struct {
	tc TestContext
}

func (s *notificationSteps) list(ctx context.Context) ([]map[string]any, error) {
	if err := s.tc.GET("/notifications"); err != nil {
		return nil, err
	}
	return s.tc.ResponseList()
}

func (s *notificationSteps) notificationCount(ctx context.Context, expected int) error {
	items, err := s.list(ctx)
	if err != nil {
		return err
	}
	if len(items) != expected {
		return fmt.Errorf("expected %d notifications, got %d", expected, len(items))
	}
	return nil
}

func (s *notificationSteps) latestMessageContains(ctx context.Context, substr string) error {
	items, err := s.list(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no notifications received")
	}
	message := fmt.Sprint(items[0]["message"])
	if !strings.Contains(message, substr) {
		return fmt.Errorf("notification %q does not contain %q", message, substr)
	}
	return nil
}
