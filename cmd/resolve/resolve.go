// Package resolve resolves the analytical account of a single transaction line
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"

	"github.com/spf13/cobra"
)

// LineFlags describe the line to resolve
type LineFlags struct {
	PartnerID         string
	PartnerTags       []string
	ProductID         string
	ProductCategoryID string
	ManualAccount     string
	ProductDefault    string
}

var flags LineFlags

// Cmd represents the resolve command
var Cmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the analytical account of one transaction line",
	Long: `Resolve the analytical account of one transaction line and print the
result as JSON.

Example:
  budget-analytics resolve --partner P1 --tag marketing --product X`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appContainer := root.GetContainer()
		if appContainer == nil {
			return fmt.Errorf("container not initialized")
		}
		return Run(cmd.Context(), appContainer.GetRuleSource(), appContainer.GetResolver(), flags, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.PartnerID, "partner", "", "Partner id")
	Cmd.Flags().StringSliceVar(&flags.PartnerTags, "tag", nil, "Partner tag (repeatable)")
	Cmd.Flags().StringVar(&flags.ProductID, "product", "", "Product id")
	Cmd.Flags().StringVar(&flags.ProductCategoryID, "category", "", "Product category id")
	Cmd.Flags().StringVar(&flags.ManualAccount, "manual", "", "Manually chosen analytical account")
	Cmd.Flags().StringVar(&flags.ProductDefault, "product-default", "", "Default analytical account of the product")
}

// Context converts the flags into a line context, blank values being absent.
func (f LineFlags) Context() models.TransactionLineContext {
	var tags []string
	for _, tag := range f.PartnerTags {
		if p := models.StringPtr(tag); p != nil {
			tags = append(tags, *p)
		}
	}
	return models.TransactionLineContext{
		PartnerID:                         models.StringPtr(f.PartnerID),
		PartnerTags:                       tags,
		ProductID:                         models.StringPtr(f.ProductID),
		ProductCategoryID:                 models.StringPtr(f.ProductCategoryID),
		ManualAnalyticalAccountID:         models.StringPtr(f.ManualAccount),
		ProductDefaultAnalyticalAccountID: models.StringPtr(f.ProductDefault),
	}
}

// Run resolves the line described by f and writes the JSON result to out.
func Run(ctx context.Context, source store.RuleSource, resolver *analytic.Resolver, f LineFlags, out io.Writer) error {
	rules, err := source.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	result := resolver.Resolve(f.Context(), rules)

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
