package game

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	PATCH(path string, body any) error
	Remember(name string) error
	Expand(s string) string
}

// RegisterSteps registers game catalog step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gameSteps{tc: tc}

	ctx.Step(`^I add the game "([^"]*)" to console "([^"]*)"$`, steps.addGame)
	ctx.Step(`^I add the game "([^"]*)" with external id (\d+) to console "([^"]*)"$`, steps.addExternalGame)
	ctx.Step(`^I set the status of "([^"]*)" to "([^"]*)"$`, steps.setStatus)
	ctx.Step(`^I move "([^"]*)" to the wishlist$`, steps.moveToWishlist)
	ctx.Step(`^I acquire "([^"]*)"$`, steps.acquire)
	ctx.Step(`^I clear the cover of "([^"]*)"$`, steps.clearCover)
	ctx.Step(`^I list the games of console "([^"]*)"$`, steps.listByConsole)
}

type gameSteps struct {
	tc TestContext
}

func (s *gameSteps) addGame(ctx context.Context, title, console string) error {
	body := map[string]any{
		"title":     title,
		"consoleId": s.tc.Expand("{" + console + "}"),
		"cover":     "https://example.test/" + title + ".jpg",
	}
	if err := s.tc.POST("/api/games", body); err != nil {
		return err
	}
	_ = s.tc.Remember(title)
	return nil
}

func (s *gameSteps) addExternalGame(ctx context.Context, title string, externalID int, console string) error {
	body := map[string]any{
		"title":      title,
		"externalId": externalID,
		"consoleId":  s.tc.Expand("{" + console + "}"),
	}
	if err := s.tc.POST("/api/games", body); err != nil {
		return err
	}
	_ = s.tc.Remember(title)
	return nil
}

func (s *gameSteps) setStatus(ctx context.Context, title, status string) error {
	return s.tc.PATCH("/api/games/{"+title+"}/status", map[string]any{"status": status})
}

func (s *gameSteps) moveToWishlist(ctx context.Context, title string) error {
	return s.tc.PATCH("/api/games/{"+title+"}/wishlist", nil)
}

func (s *gameSteps) acquire(ctx context.Context, title string) error {
	return s.tc.PATCH("/api/games/{"+title+"}/acquire", nil)
}

func (s *gameSteps) clearCover(ctx context.Context, title string) error {
	return s.tc.PUT("/api/games/{"+title+"}", map[string]any{"cover": nil})
}

func (s *gameSteps) listByConsole(ctx context.Context, console string) error {
	return s.tc.GET("/api/games?consoleId={" + console + "}")
}
