// Package reports holds the step definitions for submitting reports and
// checking their lifecycle.
package reports

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e test context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	ResponseField(path string) (any, error)
	Save(key, value string)
	Saved(key string) (string, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^I report a lost "([^"]*)" with:$`, steps.reportLost)
	ctx.Step(`^I report a found "([^"]*)" with:$`, steps.reportFound)
	ctx.Step(`^I report a found "([^"]*)" using vault slug "([^"]*)" with:$`, steps.reportFoundViaVault)
	ctx.Step(`^I save the report id as "([^"]*)"$`, steps.saveReportID)
	ctx.Step(`^the submission should report (\d+) match(?:es)?$`, steps.submissionMatchCount)
	ctx.Step(`^the lost report "([^"]*)" should have status "([^"]*)"$`, steps.lostReportStatus)
	ctx.Step(`^I mark the lost report "([^"]*)" recovered$`, steps.markRecovered)
	ctx.Step(`^I request my vault code$`, steps.requestVault)
	ctx.Step(`^I save the vault slug as "([^"]*)"$`, steps.saveVaultSlug)
}

type reportSteps struct {
	tc TestContext
}

func fieldsFromTable(docType string, table *godog.Table) map[string]any {
	body := map[string]any{"document_type": docType}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			continue
		}
		body[row.Cells[0].Value] = row.Cells[1].Value
	}
	return body
}

func (s *reportSteps) reportLost(ctx context.Context, docType string, table *godog.Table) error {
	return s.tc.POST("/reports/lost", fieldsFromTable(docType, table))
}

func (s *reportSteps) reportFound(ctx context.Context, docType string, table *godog.Table) error {
	return s.tc.POST("/reports/found", fieldsFromTable(docType, table))
}

func (s *reportSteps) reportFoundViaVault(ctx context.Context, docType, slugKey string, table *godog.Table) error {
	slug, err := s.tc.Saved(slugKey)
	if err != nil {
		return err
	}
	body := fieldsFromTable(docType, table)
	body["vault_slug"] = slug
	return s.tc.POST("/reports/found", body)
}

func (s *reportSteps) saveReportID(ctx context.Context, key string) error {
	id, err := s.tc.ResponseField("report.id")
	if err != nil {
		return err
	}
	s.tc.Save(key, fmt.Sprint(id))
	return nil
}

func (s *reportSteps) submissionMatchCount(ctx context.Context, expected int) error {
	value, err := s.tc.ResponseField("match_count")
	if err != nil {
		return err
	}
	count, ok := value.(float64)
	if !ok {
		return fmt.Errorf("match_count is not a number: %v", value)
	}
	if int(count) != expected {
		return fmt.Errorf("expected %d matches, got %d", expected, int(count))
	}
	return nil
}

func (s *reportSteps) lostReportStatus(ctx context.Context, key, expected string) error {
	id, err := s.tc.Saved(key)
	if err != nil {
		return err
	}
	if err := s.tc.GET("/reports/lost/" + id); err != nil {
		return err
	}
	status, err := s.tc.ResponseField("status")
	if err != nil {
		return err
	}
	if fmt.Sprint(status) != expected {
		return fmt.Errorf("expected report %s to have status %s, got %v", id, expected, status)
	}
	return nil
}

func (s *reportSteps) markRecovered(ctx context.Context, key string) error {
	id, err := s.tc.Saved(key)
	if err != nil {
		return err
	}
	return s.tc.POST("/reports/lost/"+id+"/recovered", map[string]any{})
}

func (s *reportSteps) requestVault(ctx context.Context) error {
	return s.tc.POST("/vault", map[string]any{})
}

func (s *reportSteps) saveVaultSlug(ctx context.Context, key string) error {
	slug, err := s.tc.ResponseField("vault.slug")
	if err != nil {
		return err
	}
	s.tc.Save(key, fmt.Sprint(slug))
	return nil
}
