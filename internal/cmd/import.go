package cmd

import (
	"fmt"
	"strings"

	"curldeck/pkg/model/mbody"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/translate/tcurl"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import CURL_COMMAND",
	Short: "Import a curl command line as a request definition",
	Long: `Import a pasted curl command and print it back in the request file
format, ready to append to a .http file. Multipart form fields are printed as
key=value body lines (file fields as key=@path).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	req, err := tcurl.ConvertCurl(strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Print(renderRequestBlock(req))
	return nil
}

// renderRequestBlock prints a request back in the request file format.
func renderRequestBlock(req mrequest.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### \n# %s\n", req.Name)

	urlStr := req.Url
	if len(req.QueryParams) > 0 {
		pairs := make([]string, 0, len(req.QueryParams))
		for _, p := range req.QueryParams {
			pairs = append(pairs, p.Key+"="+p.Value)
		}
		urlStr += "?" + strings.Join(pairs, "&")
	}
	fmt.Fprintf(&b, "%s %s\n", req.Method, urlStr)

	for _, h := range req.Headers {
		fmt.Fprintf(&b, "%s: %s\n", h.Key, h.Value)
	}

	switch {
	case len(req.Body.FormItems) > 0:
		b.WriteString("\n")
		for _, item := range req.Body.FormItems {
			value := item.Value
			if item.Kind == mbody.FormItemKindFile {
				value = "@" + value
			}
			fmt.Fprintf(&b, "%s=%s\n", item.Key, value)
		}
	case req.Body.Content != "":
		fmt.Fprintf(&b, "\n%s\n", req.Body.Content)
	}

	return b.String()
}
