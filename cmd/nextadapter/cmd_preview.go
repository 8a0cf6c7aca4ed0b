package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/planv/firebase-tools/internal/preview"
)

var (
	previewListen string
	previewDev    string
	previewStatic string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve a local preview through the framework dev server",
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge, err := preview.NewProxy(previewDev)
		if err != nil {
			return err
		}

		fallback := http.FileServer(http.Dir(previewStatic))
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bridge.Handle(w, r, fallback.ServeHTTP)
		})

		logger.Info("preview listening",
			zap.String("addr", previewListen),
			zap.String("devServer", previewDev))
		return http.ListenAndServe(previewListen, handler)
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewListen, "listen", "localhost:5000", "Address to listen on")
	previewCmd.Flags().StringVar(&previewDev, "dev-server", "http://localhost:3000", "Framework dev server URL")
	previewCmd.Flags().StringVar(&previewStatic, "static", "dist/hosting", "Static fallback directory")
}
