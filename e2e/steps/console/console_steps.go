package console

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	Remember(name string) error
	Unique(name string) string
}

// RegisterSteps registers console registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &consoleSteps{tc: tc}

	ctx.Step(`^I register a console "([^"]*)"$`, steps.registerManual)
	ctx.Step(`^I register a console "([^"]*)" linked to platform (\d+)$`, steps.registerLinked)
	ctx.Step(`^a console "([^"]*)" exists$`, steps.consoleExists)
	ctx.Step(`^I rename console "([^"]*)" to "([^"]*)"$`, steps.rename)
	ctx.Step(`^I clear the games of console "([^"]*)"$`, steps.clearGames)
}

type consoleSteps struct {
	tc TestContext
}

func (s *consoleSteps) registerManual(ctx context.Context, name string) error {
	if err := s.tc.POST("/api/consoles", map[string]any{"name": s.tc.Unique(name)}); err != nil {
		return err
	}
	// Failed registrations are asserted by later steps.
	_ = s.tc.Remember(name)
	return nil
}

func (s *consoleSteps) registerLinked(ctx context.Context, name string, platformID int) error {
	body := map[string]any{"name": s.tc.Unique(name), "externalPlatformId": platformID}
	if err := s.tc.POST("/api/consoles", body); err != nil {
		return err
	}
	_ = s.tc.Remember(name)
	return nil
}

func (s *consoleSteps) consoleExists(ctx context.Context, name string) error {
	if err := s.tc.POST("/api/consoles", map[string]any{"name": s.tc.Unique(name)}); err != nil {
		return err
	}
	return s.tc.Remember(name)
}

func (s *consoleSteps) rename(ctx context.Context, name, newName string) error {
	return s.tc.PUT("/api/consoles/{"+name+"}", map[string]any{"name": s.tc.Unique(newName)})
}

func (s *consoleSteps) clearGames(ctx context.Context, name string) error {
	return s.tc.POST("/api/consoles/{"+name+"}/clear-games", nil)
}
