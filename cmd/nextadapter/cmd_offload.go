package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planv/firebase-tools/internal/offload"
)

var (
	offloadRoot   string
	offloadDryRun bool
	offloadDriver string
)

var offloadCmd = &cobra.Command{
	Use:   "offload",
	Short: "Upload an exported static output tree to an object store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// A dry run needs no credentials, so config problems only matter
		// when something is actually uploaded.
		cfg, cfgErr := offload.ConfigFromEnv()

		var upl offload.Uploader
		if offloadDryRun {
			upl = &offload.MockUploader{BaseURL: cfg.PublicURL}
		} else {
			if cfgErr != nil {
				return cfgErr
			}
			var err error
			if offloadDriver == "s3" {
				upl, err = offload.NewS3Uploader(ctx, cfg)
			} else {
				upl, err = offload.NewMinIOUploader(cfg)
			}
			if err != nil {
				return err
			}
		}

		results, err := offload.Offload(ctx, upl, offloadRoot, logger)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	offloadCmd.Flags().StringVar(&offloadRoot, "root", "dist/hosting", "Static output directory to upload")
	offloadCmd.Flags().BoolVar(&offloadDryRun, "dry-run", false, "Record uploads without performing them")
	offloadCmd.Flags().StringVar(&offloadDriver, "driver", "minio", "Object store driver (minio or s3)")
}
