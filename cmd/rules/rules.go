// Package rules manages the analytical rule catalogue
package rules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/container"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"
	"fjacquet/budget-analytics/internal/validation"

	"github.com/spf13/cobra"
)

// RuleFlags describe a rule to add
type RuleFlags struct {
	ID                string
	Name              string
	Account           string
	PartnerTagID      string
	PartnerID         string
	ProductCategoryID string
	ProductID         string
	Confirm           bool
}

var addFlags RuleFlags

// ErrInvalidCatalogue is returned by Validate when defects were found.
var ErrInvalidCatalogue = errors.New("rule catalogue has defects")

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage analytical rules",
	Long: `Manage the analytical rules used for automatic classification.

Only CONFIRMED rules take part in matching. A rule matches a line when every
condition it sets holds; the rule with the most conditions wins.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in catalogue order",
	RunE: withContainer(func(cmd *cobra.Command, c *container.Container, args []string) error {
		return List(cmd.Context(), c.GetRuleSource(), cmd.OutOrStdout())
	}),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a rule (draft unless --confirm)",
	Example: `  budget-analytics rules add --name "Marketing X" --account CC-MKT-X \
    --partner-tag marketing --product X --confirm`,
	RunE: withContainer(func(cmd *cobra.Command, c *container.Container, args []string) error {
		rule, err := Add(cmd.Context(), c.GetRuleRepository(), addFlags)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s (%s)\n", rule.ID, rule.Status)
		return c.InvalidateRules(cmd.Context())
	}),
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <rule-id>",
	Short: "Confirm a rule so that it takes part in matching",
	Args:  cobra.ExactArgs(1),
	RunE:  statusCommand(models.RuleStatusConfirmed),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <rule-id>",
	Short: "Cancel a rule",
	Args:  cobra.ExactArgs(1),
	RunE:  statusCommand(models.RuleStatusCancelled),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	RunE: withContainer(func(cmd *cobra.Command, c *container.Container, args []string) error {
		if err := c.GetRuleRepository().DeleteRule(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
		return c.InvalidateRules(cmd.Context())
	}),
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report data-quality defects in the catalogue",
	RunE: withContainer(func(cmd *cobra.Command, c *container.Container, args []string) error {
		return Validate(cmd.Context(), c.GetRuleRepository(), cmd.OutOrStdout())
	}),
}

func init() {
	addCmd.Flags().StringVar(&addFlags.ID, "id", "", "Rule id (generated when empty)")
	addCmd.Flags().StringVar(&addFlags.Name, "name", "", "Rule name")
	addCmd.Flags().StringVar(&addFlags.Account, "account", "", "Target analytical account")
	addCmd.Flags().StringVar(&addFlags.PartnerTagID, "partner-tag", "", "Partner tag condition")
	addCmd.Flags().StringVar(&addFlags.PartnerID, "partner", "", "Partner condition")
	addCmd.Flags().StringVar(&addFlags.ProductCategoryID, "category", "", "Product category condition")
	addCmd.Flags().StringVar(&addFlags.ProductID, "product", "", "Product condition")
	addCmd.Flags().BoolVar(&addFlags.Confirm, "confirm", false, "Create the rule as CONFIRMED")
	_ = addCmd.MarkFlagRequired("account")

	Cmd.AddCommand(listCmd, addCmd, confirmCmd, cancelCmd, deleteCmd, validateCmd)
}

func withContainer(run func(cmd *cobra.Command, c *container.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		return run(cmd, c, args)
	}
}

func statusCommand(status models.RuleStatus) func(*cobra.Command, []string) error {
	return withContainer(func(cmd *cobra.Command, c *container.Container, args []string) error {
		if err := c.GetRuleRepository().UpdateStatus(cmd.Context(), args[0], status); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rule %s is now %s\n", args[0], status)
		return c.InvalidateRules(cmd.Context())
	})
}

// Rule builds the rule described by the flags. Priority mirrors the number
// of conditions.
func (f RuleFlags) Rule() models.Rule {
	rule := models.Rule{
		ID:                  f.ID,
		Name:                f.Name,
		Status:              models.RuleStatusDraft,
		AnalyticalAccountID: f.Account,
		PartnerTagID:        models.StringPtr(f.PartnerTagID),
		PartnerID:           models.StringPtr(f.PartnerID),
		ProductCategoryID:   models.StringPtr(f.ProductCategoryID),
		ProductID:           models.StringPtr(f.ProductID),
	}
	if f.Confirm {
		rule.Status = models.RuleStatusConfirmed
	}
	rule.Priority = analytic.ConditionCount(rule)
	return rule
}

// Add validates and stores the rule described by f.
func Add(ctx context.Context, repo store.RuleRepository, f RuleFlags) (models.Rule, error) {
	rule := f.Rule()
	for _, finding := range validation.ValidateRule(rule) {
		// The id is generated by the repository.
		if finding.Field == "id" && rule.ID == "" {
			continue
		}
		return models.Rule{}, finding
	}
	return repo.CreateRule(ctx, rule)
}

// List writes the catalogue as a table.
func List(ctx context.Context, source store.RuleSource, out io.Writer) error {
	rules, err := source.ListRules(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCONDITIONS\tACCOUNT\tPARTNER_TAG\tPARTNER\tCATEGORY\tPRODUCT")
	for _, rule := range rules {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rule.ID, rule.Name, rule.Status, conditionList(rule), rule.AnalyticalAccountID,
			dash(rule.PartnerTagID), dash(rule.PartnerID), dash(rule.ProductCategoryID), dash(rule.ProductID))
	}
	return w.Flush()
}

// Validate prints every finding and returns ErrInvalidCatalogue if any.
func Validate(ctx context.Context, source store.RuleSource, out io.Writer) error {
	rules, err := source.ListRules(ctx)
	if err != nil {
		return err
	}

	findings := validation.ValidateRules(rules)
	for _, finding := range findings {
		_, _ = fmt.Fprintln(out, finding.Error())
	}
	if len(findings) > 0 {
		return fmt.Errorf("%w: %d finding(s)", ErrInvalidCatalogue, len(findings))
	}
	_, _ = fmt.Fprintf(out, "%d rule(s), no defects found\n", len(rules))
	return nil
}

func conditionList(rule models.Rule) string {
	names := analytic.ConditionNames(rule)
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func dash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
