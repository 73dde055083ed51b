package main

import (
	"fmt"
	"os"

	"fjacquet/budget-analytics/cmd/batch"
	"fjacquet/budget-analytics/cmd/report"
	"fjacquet/budget-analytics/cmd/resolve"
	"fjacquet/budget-analytics/cmd/root"
	"fjacquet/budget-analytics/cmd/rules"
	"fjacquet/budget-analytics/cmd/serve"
)

func init() {
	root.Cmd.AddCommand(resolve.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(report.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
