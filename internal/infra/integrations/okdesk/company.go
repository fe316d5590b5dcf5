package okdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/yofomoose/okdesk-bot/internal/core/ident"
	"github.com/yofomoose/okdesk-bot/internal/ports"
)

// Field code aliases under which deployments have been seen to store
// the tax id inside a company's parameters list.
var taxIDParameterCodes = map[string]bool{
	"inn":         true,
	"инн":         true,
	"inn_company": true,
	"0001":        true,
}

// FindCompanyByTaxID searches the company directory for a tax id.
// Strategy, first hit wins:
//  1. server-side filtered query by the inn parameter;
//  2. one bounded bulk listing scanned client-side across the three
//     known data placements for the tax id.
func (c *Client) FindCompanyByTaxID(ctx context.Context, taxID string) (*ports.RemoteCompany, error) {
	taxID = ident.NormalizeTaxID(taxID)
	if taxID == "" {
		return nil, nil
	}

	company, err := c.searchCompanyByParam(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if company != nil {
		return company, nil
	}

	return c.scanCompaniesByTaxID(ctx, taxID)
}

func (c *Client) searchCompanyByParam(ctx context.Context, taxID string) (*ports.RemoteCompany, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("/companies?inn=%s", url.QueryEscape(taxID))
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &raw); err != nil {
		return nil, err
	}

	for _, item := range extractList(raw, "companies") {
		var company ports.RemoteCompany
		if err := json.Unmarshal(item, &company); err != nil {
			continue
		}
		if company.ID != 0 && companyHasTaxID(&company, taxID) {
			return &company, nil
		}
	}

	return nil, nil
}

func (c *Client) scanCompaniesByTaxID(ctx context.Context, taxID string) (*ports.RemoteCompany, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("/companies?limit=%d", c.scanLimit)
	if err := c.makeRequest(ctx, "GET", endpoint, nil, &raw); err != nil {
		return nil, err
	}

	for _, item := range extractList(raw, "companies") {
		var company ports.RemoteCompany
		if err := json.Unmarshal(item, &company); err != nil {
			continue
		}
		if company.ID != 0 && companyHasTaxID(&company, taxID) {
			c.logger.InfoWithFields("Company found via bulk scan", map[string]interface{}{
				"company_id": company.ID,
			})
			matched := company
			return &matched, nil
		}
	}

	return nil, nil
}

// companyHasTaxID checks the three placements a deployment may use for
// the tax id, in order: top-level fields, the typed parameters list,
// the free-form custom parameters map. First structural match wins.
func companyHasTaxID(company *ports.RemoteCompany, taxID string) bool {
	if company.INN == taxID || company.LegalINN == taxID || company.TaxNumber == taxID {
		return true
	}

	for _, param := range company.Parameters {
		code := strings.ToLower(strings.TrimSpace(param.Code))
		name := strings.ToLower(strings.TrimSpace(param.Name))
		if !taxIDParameterCodes[code] && !strings.Contains(name, "инн") && !strings.Contains(name, "inn") {
			continue
		}
		if parameterValue(param.Value) == taxID {
			return true
		}
	}

	for key, value := range company.CustomParameters {
		if taxIDParameterCodes[strings.ToLower(strings.TrimSpace(key))] && parameterValue(value) == taxID {
			return true
		}
	}

	return false
}

func parameterValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%.0f", v))
	}
	return ""
}

// CreateCompany provisions a new company record, writing the tax id
// both top-level and as a parameter so either lookup placement finds
// it later.
func (c *Client) CreateCompany(ctx context.Context, input ports.NewCompanyInput) (*ports.RemoteCompany, error) {
	payload := map[string]interface{}{
		"name": input.Name,
	}
	if input.TaxID != "" {
		payload["inn"] = input.TaxID
		payload["parameters"] = []map[string]interface{}{
			{"code": "inn", "value": input.TaxID},
		}
	}

	var company ports.RemoteCompany
	if err := c.makeRequest(ctx, "POST", "/companies", payload, &company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	c.logger.InfoWithFields("Company created", map[string]interface{}{
		"company_id": company.ID,
	})
	return &company, nil
}
