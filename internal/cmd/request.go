package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netcanis/feat-network/internal/api"
	"github.com/netcanis/feat-network/internal/dryrun"
)

func newRequestCmd() *cobra.Command {
	var (
		method         string
		fields         []string
		rawFields      []string
		inputFile      string
		jsonBody       string
		headerFlags    []string
		queryFlags     []string
		successFlags   []int
		silent         bool
		includeHeaders bool
	)

	cmd := &cobra.Command{
		Use:     "request <path>",
		Aliases: []string{"req"},
		Short:   "Make an API request to any endpoint",
		Long: `Make an API request to any endpoint on the configured server.

The path is appended to the stored base URL exactly as given, so include any
API prefix the server expects (e.g. /api/v1/users).

By default only HTTP 200 counts as success; any other status is reported as
an error. Use --success to accept additional statuses (e.g. 201 for creates).`,
		Example: `  # GET request (default)
  featnet request /api/v1/users/42

  # POST request with fields
  featnet request /api/v1/users -X POST -f name=alice -F 'tags=["admin"]'

  # Inline JSON body
  featnet request /api/v1/users -X POST -d '{"name":"alice"}'

  # Read body from stdin
  echo '{"name":"alice"}' | featnet request /api/v1/users -X POST -i -

  # Accept 201 as success for creates
  featnet request /api/v1/users -X POST -d '{"name":"alice"}' --success 200 --success 201

  # Extra headers and query parameters
  featnet request /api/v1/search -H 'X-Trace: 1' -q 'term=alice'

  # Filter response with jq
  featnet request /api/v1/users --json --jq '.[0].name'`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()

			validMethods := map[string]bool{
				"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
			}
			method = strings.ToUpper(method)
			if !validMethods[method] {
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, PATCH, DELETE", method)
			}

			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}

			bodyMap, err := buildRequestBody(fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}

			headers, err := parseHeaderFlags(headerFlags)
			if err != nil {
				return err
			}
			query, err := parsePairFlags("query", queryFlags)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if len(successFlags) > 0 {
				client.SuccessStatuses = successFlags
			}

			ep := api.NewEndpoint(method, path)
			for k, v := range headers {
				ep = ep.WithHeader(k, v)
			}
			for _, k := range sortedKeys(query) {
				ep = ep.WithQuery(k, query[k])
			}

			var body []byte
			var contentType string
			if bodyMap != nil {
				body, err = json.Marshal(bodyMap)
				if err != nil {
					return fmt.Errorf("failed to encode request body: %w", err)
				}
				contentType = "application/json"
			}

			if dryrun.IsEnabled(cmd.Context()) {
				fullURL, err := ep.URL(client.BaseURL)
				if err != nil {
					return err
				}
				previewHeaders := make(map[string]string, len(headers)+1)
				for k, v := range headers {
					previewHeaders[k] = v
				}
				if contentType != "" {
					previewHeaders["Content-Type"] = contentType
				}
				preview := &dryrun.Preview{
					Method:  method,
					URL:     fullURL,
					Headers: previewHeaders,
					Body:    string(body),
				}
				if isJSON(cmd) {
					return printJSON(cmd, preview)
				}
				preview.Write(out)
				return nil
			}

			respBody, respHeaders, statusCode, err := client.Do(cmd.Context(), ep, body, contentType)
			if err != nil {
				return err
			}

			if silent {
				return nil
			}

			if isJSON(cmd) {
				return printJSON(cmd, responsePayload(respBody, respHeaders, statusCode, includeHeaders))
			}

			if includeHeaders {
				_, _ = fmt.Fprintf(out, "HTTP %d\n", statusCode)
				keys := make([]string, 0, len(respHeaders))
				for k := range respHeaders {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					for _, v := range respHeaders[k] {
						_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
					}
				}
				_, _ = fmt.Fprintln(out)
			}

			if len(respBody) > 0 {
				var jsonData any
				if err := json.Unmarshal(respBody, &jsonData); err == nil {
					prettyJSON, err := json.MarshalIndent(jsonData, "", "  ")
					if err == nil {
						_, _ = fmt.Fprintln(out, string(prettyJSON))
						return nil
					}
				}
				_, _ = fmt.Fprintln(out, string(respBody))
			}

			return nil
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON string")
	cmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra request header as 'Key: Value'")
	cmd.Flags().StringArrayVarP(&queryFlags, "query", "q", nil, "Query parameter as key=value")
	cmd.Flags().IntSliceVar(&successFlags, "success", nil, "HTTP statuses to treat as success (default 200)")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress output")
	cmd.Flags().BoolVar(&includeHeaders, "include", false, "Include response headers in output")

	return cmd
}

func responsePayload(respBody []byte, headers map[string][]string, statusCode int, includeHeaders bool) any {
	body := decodeResponseBody(respBody)
	if !includeHeaders {
		return body
	}
	return map[string]any{
		"status":  statusCode,
		"headers": headers,
		"body":    body,
	}
}

func decodeResponseBody(respBody []byte) any {
	if len(respBody) == 0 {
		return nil
	}
	if !json.Valid(respBody) {
		return string(respBody)
	}
	pretty := &bytes.Buffer{}
	if err := json.Indent(pretty, respBody, "", "  "); err != nil {
		return json.RawMessage(respBody)
	}
	return json.RawMessage(pretty.Bytes())
}

// buildRequestBody constructs the request body from fields and/or input file/inline JSON
func buildRequestBody(fields, rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if inputFile != "" {
		var inputData []byte
		var err error

		if inputFile == "-" {
			inputData, err = io.ReadAll(os.Stdin)
		} else {
			inputData, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		if err := json.Unmarshal(inputData, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("invalid field format %q: must be key=value", field)
		}
		body[key] = value
	}

	for _, field := range rawFields {
		key, valueStr, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
		}
		var value any
		if err := json.Unmarshal([]byte(valueStr), &value); err != nil {
			return nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
		}
		body[key] = value
	}

	if len(body) == 0 {
		return nil, nil
	}

	return body, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
