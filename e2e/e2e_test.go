package e2e

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e scenarios in short mode")
	}
	if os.Getenv("E2E_BASE_URL") == "" {
		t.Skip("E2E_BASE_URL not set; start the server and point the suite at it")
	}

	suite := godog.TestSuite{
		Name: "gamelib",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			RegisterSteps(sc, NewTestContext())
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("e2e scenarios failed")
	}
}
