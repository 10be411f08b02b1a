package cases

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	PUT(path string, body any) error
	GetResponseField(field string) (any, error)
	GetResponseList() ([]map[string]any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetAccessToken(token string)
	TokenFor(user string) (string, bool)
	Save(name, value string)
	Saved(name string) string
}

// RegisterSteps registers case lifecycle, access and evidence steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &caseSteps{tc: tc}

	ctx.Step(`^"([^"]*)" requests a case titled "([^"]*)"$`, steps.requestCase)
	ctx.Step(`^the admin approves the case request$`, steps.approveCaseRequest)
	ctx.Step(`^"([^"]*)" adds evidence "([^"]*)" to the case$`, steps.addEvidence)
	ctx.Step(`^"([^"]*)" requests access to the case$`, steps.requestAccess)
	ctx.Step(`^the admin approves the access request$`, steps.approveAccess)
	ctx.Step(`^"([^"]*)" should see the case with access (granted|withheld)$`, steps.shouldSeeCase)
	ctx.Step(`^the case evidence should include "([^"]*)"$`, steps.caseEvidenceIncludes)
}

type caseSteps struct {
	tc      TestContext
	lastRow map[string]any
}

func (s *caseSteps) actAs(user string) error {
	token, ok := s.tc.TokenFor(user)
	if !ok {
		return fmt.Errorf("%s has not logged in", user)
	}
	s.tc.SetAccessToken(token)
	return nil
}

func (s *caseSteps) expect(status int, what string) error {
	if got := s.tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("%s: expected %d, got %d: %s", what, status, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *caseSteps) requestCase(_ context.Context, user, title string) error {
	if err := s.actAs(user); err != nil {
		return err
	}
	if err := s.tc.POST("/request-case", map[string]string{
		"title":       title,
		"description": title + " reported by " + user,
		"requestedBy": s.tc.Saved(user + "_id"),
	}); err != nil {
		return err
	}
	if err := s.expect(http.StatusCreated, "request case"); err != nil {
		return err
	}
	reqID, err := s.tc.GetResponseField("request.id")
	if err != nil {
		return err
	}
	s.tc.Save("request_id", fmt.Sprint(reqID))
	return nil
}

func (s *caseSteps) approveCaseRequest(context.Context) error {
	if err := s.actAs("admin"); err != nil {
		return err
	}
	if err := s.tc.POST("/approve-case/"+s.tc.Saved("request_id"), nil); err != nil {
		return err
	}
	if err := s.expect(http.StatusOK, "approve case"); err != nil {
		return err
	}
	caseID, err := s.tc.GetResponseField("case.id")
	if err != nil {
		return err
	}
	s.tc.Save("case_id", fmt.Sprint(caseID))
	return nil
}

func (s *caseSteps) addEvidence(_ context.Context, user, title string) error {
	if err := s.actAs(user); err != nil {
		return err
	}
	if err := s.tc.POST("/add-evidence", map[string]string{
		"title":       title,
		"description": title + " collected on scene",
		"fileHash":    "QmE2eFixtureHash",
		"uploadedBy":  s.tc.Saved(user + "_id"),
		"caseId":      s.tc.Saved("case_id"),
	}); err != nil {
		return err
	}
	return s.expect(http.StatusCreated, "add evidence")
}

func (s *caseSteps) requestAccess(_ context.Context, user string) error {
	if err := s.actAs(user); err != nil {
		return err
	}
	if err := s.tc.POST("/request-access", map[string]string{
		"userId": s.tc.Saved(user + "_id"),
		"caseId": s.tc.Saved("case_id"),
	}); err != nil {
		return err
	}
	if err := s.expect(http.StatusCreated, "request access"); err != nil {
		return err
	}
	accessID, err := s.tc.GetResponseField("request.id")
	if err != nil {
		return err
	}
	s.tc.Save("access_id", fmt.Sprint(accessID))
	return nil
}

func (s *caseSteps) approveAccess(context.Context) error {
	if err := s.actAs("admin"); err != nil {
		return err
	}
	if err := s.tc.PUT("/approve-access/"+s.tc.Saved("access_id"), nil); err != nil {
		return err
	}
	return s.expect(http.StatusOK, "approve access")
}

func (s *caseSteps) shouldSeeCase(_ context.Context, user, state string) error {
	if err := s.actAs(user); err != nil {
		return err
	}
	if err := s.tc.GET("/cases-with-access/" + s.tc.Saved(user+"_id")); err != nil {
		return err
	}
	if err := s.expect(http.StatusOK, "cases with access"); err != nil {
		return err
	}
	rows, err := s.tc.GetResponseList()
	if err != nil {
		return err
	}
	caseID := s.tc.Saved("case_id")
	idx := slices.IndexFunc(rows, func(row map[string]any) bool { return row["id"] == caseID })
	if idx < 0 {
		return fmt.Errorf("case %s not listed for %s", caseID, user)
	}
	s.lastRow = rows[idx]
	if granted := s.lastRow["accessGranted"] == true; granted != (state == "granted") {
		return fmt.Errorf("expected access %s, row was %v", state, s.lastRow)
	}
	return nil
}

func (s *caseSteps) caseEvidenceIncludes(_ context.Context, title string) error {
	titles, _ := s.lastRow["evidence"].([]any)
	for _, t := range titles {
		if t == title {
			return nil
		}
	}
	return fmt.Errorf("evidence %v does not include %q", titles, title)
}
