package e2e

import (
	"github.com/cucumber/godog"

	"casevault/e2e/steps/cases"
	"casevault/e2e/steps/common"
	"casevault/e2e/steps/identity"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	identity.RegisterSteps(ctx, tc)
	cases.RegisterSteps(ctx, tc)
}
