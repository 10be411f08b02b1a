package identity

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cucumber/godog"
)

const password = "Correct-Horse-42"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetAccessToken(token string)
	RememberToken(user, token string)
	Save(name, value string)
	Saved(name string) string
	Expand(s string) string
}

// RegisterSteps registers registration, approval and login steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^a registered user "([^"]*)"$`, steps.registeredUser)
	ctx.Step(`^an approved user "([^"]*)"$`, steps.approvedUser)
	ctx.Step(`^I log in as admin$`, steps.loginAsAdmin)
	ctx.Step(`^the admin approves "([^"]*)"$`, steps.adminApproves)
	ctx.Step(`^I log in as "([^"]*)"$`, steps.loginAs)
	ctx.Step(`^I try to log in as "([^"]*)"$`, steps.tryLoginAs)
}

type identitySteps struct {
	tc TestContext
}

// username makes scenario names unique per run; "alice" becomes "alice_<run>".
func (s *identitySteps) username(name string) string {
	return name + "_" + s.tc.Saved("run")
}

func (s *identitySteps) registeredUser(_ context.Context, name string) error {
	username := s.username(name)
	if err := s.tc.POST("/register", map[string]string{
		"username":   username,
		"password":   password,
		"email":      username + "@precinct.example",
		"fullName":   name + " Example",
		"batchId":    "B-17",
		"department": "Forensics",
	}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusCreated {
		return fmt.Errorf("register %s: %d %s", name, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	userID, err := s.tc.GetResponseField("user.id")
	if err != nil {
		return err
	}
	s.tc.Save(name+"_id", fmt.Sprint(userID))
	return nil
}

func (s *identitySteps) approvedUser(ctx context.Context, name string) error {
	if err := s.registeredUser(ctx, name); err != nil {
		return err
	}
	if err := s.loginAsAdmin(ctx); err != nil {
		return err
	}
	return s.adminApproves(ctx, name)
}

func (s *identitySteps) login(username, pass string) error {
	if err := s.tc.POST("/login", map[string]string{"username": username, "password": pass}); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return nil
	}
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(fmt.Sprint(token))
	return nil
}

func (s *identitySteps) loginAsAdmin(context.Context) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	pass := os.Getenv("ADMIN_PASSWORD")
	if pass == "" {
		return fmt.Errorf("ADMIN_PASSWORD must match the server's seeded admin")
	}
	if err := s.login(username, pass); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("admin login: %d %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	s.tc.RememberToken("admin", s.currentToken())
	return nil
}

func (s *identitySteps) currentToken() string {
	token, _ := s.tc.GetResponseField("token")
	return fmt.Sprint(token)
}

func (s *identitySteps) adminApproves(_ context.Context, name string) error {
	if err := s.tc.PUT("/approve-user/"+s.tc.Saved(name+"_id"), nil); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("approve %s: %d %s", name, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *identitySteps) loginAs(_ context.Context, name string) error {
	if err := s.login(s.username(name), password); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("login %s: %d %s", name, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	s.tc.RememberToken(name, s.currentToken())
	return nil
}

func (s *identitySteps) tryLoginAs(_ context.Context, name string) error {
	return s.login(s.username(name), password)
}
