package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mvu/internal/errors"
	"github.com/vango-dev/mvu/internal/publish"
)

func publishCmd(c *cli) *cobra.Command {
	var (
		appName string
		bucket  string
		prefix  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the pre-rendered page of a demo application to S3",
		Long: `Render a demo application's initial state and upload the page to an
S3 bucket as ` + publish.PageName + `.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN. Bucket, prefix, region and endpoint default to the
publish section of the config file.

Examples:
  mvu publish --app todo --bucket my-site
  mvu publish --app counter --bucket my-site --prefix demos/counter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc := c.cfg.Publish
			if bucket != "" {
				pc.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				pc.Prefix = prefix
			}
			if pc.Bucket == "" {
				return errors.New("M081")
			}

			page, err := c.renderPage(appName)
			if err != nil {
				return err
			}

			pub, err := publish.New(publish.NewClient(pc), pc.Bucket, pc.Prefix)
			if err != nil {
				return errors.FromError(err, "M081")
			}
			res, err := pub.PublishPage(cmd.Context(), page, appName)
			if err != nil {
				return errors.FromError(err, "M080")
			}

			c.logger.Info("page published", "uri", res.URI(), "etag", res.ETag, "bytes", res.Size)
			success(cmd, "Published %s (%d bytes)", res.URI(), res.Size)
			return nil
		},
	}

	cmd.Flags().StringVarP(&appName, "app", "a", "counter", fmt.Sprintf("Application to publish %v", appNames()))
	cmd.Flags().StringVar(&bucket, "bucket", "", "Target bucket (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from config)")

	return cmd
}
