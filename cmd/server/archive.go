package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/daystreak/api/internal/bootstrap"
	"github.com/daystreak/api/internal/infra/blob"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

// archiveCmd lets operators inspect AI output that failed to parse.
func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived malformed roadmap plans",
	}

	var presign bool
	show := &cobra.Command{
		Use:   "show [key]",
		Short: "Print an archived plan, or a temporary download URL with --url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := bootstrap.BuildContainer()
			s3, err := do.Invoke[*blob.S3Deps](inj)
			if err != nil {
				return err
			}
			if s3 == nil {
				return errors.New("s3.bucket is not configured")
			}

			if presign {
				expire := do.MustInvoke[func() time.Duration](inj)()
				url, err := s3.PresignGet(cmd.Context(), args[0], expire)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}

			body, err := s3.ReadText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
	show.Flags().BoolVar(&presign, "url", false, "print a presigned GET url instead of the content")

	cmd.AddCommand(show)
	return cmd
}
