package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mvu/internal/demo"
)

func renderCmd(c *cli) *cobra.Command {
	var appName string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the pre-rendered page of a demo application",
		Long: `Render a demo application's initial state and print the complete
HTML page to standard output.

Examples:
  mvu render --app counter
  mvu render --app todo > index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.renderPage(appName)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(page)
			return err
		},
	}

	cmd.Flags().StringVarP(&appName, "app", "a", "counter", fmt.Sprintf("Application to render %v", appNames()))

	return cmd
}

func appNames() string {
	return "(" + strings.Join(demo.Names(), ", ") + ")"
}
