package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avencall/homegrid-core/internal/automation"
)

// Rules lists the automation rules of a house.
func (c *Client) Rules(ctx context.Context, houseID int) ([]automation.Rule, error) {
	var rules []automation.Rule
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("house_id", strconv.Itoa(houseID)).
		SetResult(&rules).
		Get("/api/automation/rules")
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	automation.SortByID(rules)
	return rules, nil
}

// DeleteRule removes one automation rule. Satisfies automation.RuleDeleter
// so type-change plans can resolve against the live backend.
func (c *Client) DeleteRule(ctx context.Context, id int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/automation/rules/%d", id))
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	c.logger.Debug("rule deleted", "rule_id", id)
	return nil
}

// Trigger asks the backend to run one automation evaluation round. The
// endpoint takes no input: the backend evaluates every active rule of the
// houses the token can reach and reports the fired actions.
func (c *Client) Trigger(ctx context.Context) (automation.TriggerResult, error) {
	var result automation.TriggerResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Post("/api/automation/trigger")
	if err != nil {
		return automation.TriggerResult{}, fmt.Errorf("trigger automation: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return automation.TriggerResult{}, err
	}
	if result.Fired() {
		c.logger.Debug("automation fired", "actions", result.ActionsCount)
	}
	return result, nil
}
