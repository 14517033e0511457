package e2e

import (
	"github.com/cucumber/godog"

	"gamelib/e2e/steps/common"
	"gamelib/e2e/steps/console"
	"gamelib/e2e/steps/game"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	console.RegisterSteps(ctx, tc)
	game.RegisterSteps(ctx, tc)
}
