// Package common holds the step definitions every feature shares: identity,
// generic requests, and response assertions.
package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e test context these steps need.
type TestContext interface {
	SignIn(user string) error
	SignOut()
	StatusCode() int
	ResponseField(path string) (any, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the registry is running$`, steps.registryIsRunning)
	ctx.Step(`^I am signed in as "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I am not signed in$`, steps.signOut)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusIs)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldIs)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) registryIsRunning(ctx context.Context) error {
	// The stack is rebuilt before every scenario; nothing to start.
	return nil
}

func (s *commonSteps) signIn(ctx context.Context, user string) error {
	return s.tc.SignIn(user)
}

func (s *commonSteps) signOut(ctx context.Context) error {
	s.tc.SignOut()
	return nil
}

func (s *commonSteps) responseStatusIs(ctx context.Context, expected int) error {
	if got := s.tc.StatusCode(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldIs(ctx context.Context, path, expected string) error {
	value, err := s.tc.ResponseField(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected field %q to be %q, got %q", path, expected, got)
	}
	return nil
}
