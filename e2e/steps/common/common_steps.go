package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	DELETE(path string) error
	GetResponseField(field string) (any, error)
	GetResponseList() ([]map[string]any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetAccessToken(token string)
	Save(name, value string)
	Expand(s string) string
}

// RegisterSteps registers generic request and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I send no credentials$`, steps.noCredentials)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I PUT "([^"]*)"$`, steps.put)
	ctx.Step(`^I DELETE "([^"]*)"$`, steps.delete)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.errorShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response list should have (\d+) items?$`, steps.listShouldHave)
	ctx.Step(`^I save the response field "([^"]*)" as "([^"]*)"$`, steps.saveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) noCredentials(context.Context) error {
	s.tc.SetAccessToken("")
	return nil
}

func (s *commonSteps) get(_ context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) put(_ context.Context, path string) error {
	return s.tc.PUT(path, nil)
}

func (s *commonSteps) delete(_ context.Context, path string) error {
	return s.tc.DELETE(path)
}

func (s *commonSteps) postWithBody(_ context.Context, path string, body *godog.DocString) error {
	raw := json.RawMessage(s.tc.Expand(body.Content))
	if !json.Valid(raw) {
		return fmt.Errorf("step body is not valid JSON: %s", body.Content)
	}
	return s.tc.POST(path, raw)
}

func (s *commonSteps) statusShouldBe(_ context.Context, expected int) error {
	if got := s.tc.GetLastResponseStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) errorShouldBe(_ context.Context, code string) error {
	return s.fieldShouldEqual(context.Background(), "error", code)
}

func (s *commonSteps) fieldShouldEqual(_ context.Context, field, expected string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	expected = s.tc.Expand(expected)
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("field %q: expected %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) listShouldHave(_ context.Context, n int) error {
	rows, err := s.tc.GetResponseList()
	if err != nil {
		return err
	}
	if len(rows) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(rows))
	}
	return nil
}

func (s *commonSteps) saveField(_ context.Context, field, name string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s.tc.Save(name, strings.TrimSpace(fmt.Sprint(v)))
	return nil
}
