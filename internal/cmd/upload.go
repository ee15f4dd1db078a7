package cmd

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netcanis/feat-network/internal/api"
	"github.com/netcanis/feat-network/internal/dryrun"
)

func newUploadCmd() *cobra.Command {
	var (
		method     string
		filePath   string
		mimeType   string
		fieldFlags []string
	)

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file as multipart/form-data",
		Long: `Upload a file to an endpoint as multipart/form-data.

The file goes in the form part named "file"; extra form fields are added
with --field. The MIME type is detected from the file extension and content
when not given explicitly.`,
		Example: `  # Upload an image with extra fields
  featnet upload /api/v1/avatars --file photo.jpg --field user_id=42

  # Override the detected MIME type
  featnet upload /api/v1/docs --file report.bin --mime application/pdf`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if filePath == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			contentType := mimeType
			if contentType == "" {
				contentType = detectMIMEType(filePath, data)
			}

			fields, err := parsePairFlags("field", fieldFlags)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			ep := api.NewEndpoint(strings.ToUpper(method), path)

			if dryrun.IsEnabled(cmd.Context()) {
				fullURL, err := ep.URL(client.BaseURL)
				if err != nil {
					return err
				}
				previewHeaders := map[string]string{
					"Content-Type": "multipart/form-data",
				}
				for k, v := range fields {
					previewHeaders["form:"+k] = v
				}
				preview := &dryrun.Preview{
					Method:  ep.Method,
					URL:     fullURL,
					Headers: previewHeaders,
					Body:    fmt.Sprintf("file %s (%d bytes, %s)", filepath.Base(filePath), len(data), contentType),
				}
				if isJSON(cmd) {
					return printJSON(cmd, preview)
				}
				preview.Write(cmd.OutOrStdout())
				return nil
			}

			var result map[string]any
			if err := client.UploadFile(cmd.Context(), ep, data, filepath.Base(filePath), contentType, fields, &result); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, result)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes, %s)\n", filepath.Base(filePath), len(data), contentType)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", "POST", "HTTP method for the upload")
	cmd.Flags().StringVar(&filePath, "file", "", "Path of the file to upload (required)")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type of the file (detected when empty)")
	cmd.Flags().StringArrayVarP(&fieldFlags, "field", "f", nil, "Extra form field as key=value")

	return cmd
}

// detectMIMEType resolves a MIME type from the file extension, falling back
// to content sniffing.
func detectMIMEType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
