package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/incidentd/pkg/model"
	"github.com/doodlesbykumbi/incidentd/pkg/schema"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc             *TestContext
	response       *http.Response
	responseBody   []byte
	rememberedID   int64
	rememberedInfo schema.Incident
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.DB.Exec("DELETE FROM incidents").Error
	})

	// Background steps
	sc.Step(`^the incidents service is running$`, s.theIncidentsServiceIsRunning)

	// Request steps
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a POST request to "([^"]*)" with body:$`, s.iSendAPOSTRequestWithBody)
	sc.Step(`^I report an incident "([^"]*)" with severity "([^"]*)"$`, s.iReportAnIncident)
	sc.Step(`^I remember the incident from the response$`, s.iRememberTheIncident)
	sc.Step(`^I send a (GET|DELETE) request for the remembered incident$`, s.iSendARequestForTheRememberedIncident)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should be empty$`, s.theResponseBodyShouldBeEmpty)
	sc.Step(`^the response message should be "([^"]*)"$`, s.theResponseMessageShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the field "([^"]*)" should be rejected with "([^"]*)"$`, s.theFieldShouldBeRejectedWith)
	sc.Step(`^the response should list incidents titled "([^"]*)"$`, s.theResponseShouldListIncidentsTitled)
	sc.Step(`^the response should match the remembered incident$`, s.theResponseShouldMatchTheRememberedIncident)

	// Database steps
	sc.Step(`^the database should contain (\d+) incidents?$`, s.theDatabaseShouldContainIncidents)
}

func (s *StepsContext) theIncidentsServiceIsRunning() error {
	return waitForServer(s.tc.ServerURL(), time.Second)
}

func (s *StepsContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL()+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendAPOSTRequestWithBody(path string, body *godog.DocString) error {
	return s.do(http.MethodPost, path, strings.NewReader(body.Content))
}

func (s *StepsContext) iReportAnIncident(title, severity string) error {
	body, err := json.Marshal(map[string]string{
		"title":       title,
		"description": title + " details",
		"severity":    severity,
	})
	if err != nil {
		return err
	}
	if err := s.do(http.MethodPost, "/incidents", strings.NewReader(string(body))); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusCreated)
}

func (s *StepsContext) iRememberTheIncident() error {
	if err := json.Unmarshal(s.responseBody, &s.rememberedInfo); err != nil {
		return fmt.Errorf("response is not an incident: %w: %s", err, s.responseBody)
	}
	s.rememberedID = s.rememberedInfo.ID
	return nil
}

func (s *StepsContext) iSendARequestForTheRememberedIncident(method string) error {
	return s.do(method, fmt.Sprintf("/incidents/%d", s.rememberedID), nil)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldBeEmpty() error {
	if len(s.responseBody) != 0 {
		return fmt.Errorf("expected empty body, got %q", s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseMessageShouldBe(expected string) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not a message: %w: %s", err, s.responseBody)
	}
	if body.Message != expected {
		return fmt.Errorf("expected message %q, got %q", expected, body.Message)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not an object: %w: %s", err, s.responseBody)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q: %s", field, s.responseBody)
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *StepsContext) theFieldShouldBeRejectedWith(field, message string) error {
	var errs map[string][]string
	if err := json.Unmarshal(s.responseBody, &errs); err != nil {
		return fmt.Errorf("response is not a validation error: %w: %s", err, s.responseBody)
	}
	for _, got := range errs[field] {
		if got == message {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be rejected with %q, got %v", field, message, errs[field])
}

func (s *StepsContext) theResponseShouldListIncidentsTitled(titles string) error {
	var incidents []schema.Incident
	if err := json.Unmarshal(s.responseBody, &incidents); err != nil {
		return fmt.Errorf("response is not a list of incidents: %w: %s", err, s.responseBody)
	}

	var expected []string
	if titles != "" {
		expected = strings.Split(titles, ", ")
	}
	got := make([]string, 0, len(incidents))
	for _, inc := range incidents {
		got = append(got, inc.Title)
	}
	if strings.Join(got, ", ") != strings.Join(expected, ", ") {
		return fmt.Errorf("expected incidents %v, got %v", expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseShouldMatchTheRememberedIncident() error {
	var got schema.Incident
	if err := json.Unmarshal(s.responseBody, &got); err != nil {
		return fmt.Errorf("response is not an incident: %w: %s", err, s.responseBody)
	}
	if got != s.rememberedInfo {
		return fmt.Errorf("expected %+v, got %+v", s.rememberedInfo, got)
	}
	return nil
}

// Database steps

func (s *StepsContext) theDatabaseShouldContainIncidents(expected int) error {
	var count int64
	if err := s.tc.DB.Model(&model.Incident{}).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d incidents in the database, got %d", expected, count)
	}
	return nil
}
