package e2e

import (
	"github.com/cucumber/godog"

	"idreclaim/e2e/steps/common"
	"idreclaim/e2e/steps/notifications"
	"idreclaim/e2e/steps/reports"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	reports.RegisterSteps(ctx, tc)
	notifications.RegisterSteps(ctx, tc)
}
