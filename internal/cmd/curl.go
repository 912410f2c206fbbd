package cmd

import (
	"fmt"
	"os"

	"curldeck/pkg/reqfile"
	"curldeck/pkg/translate/tcurlcmd"

	"github.com/spf13/cobra"
)

var curlCmd = &cobra.Command{
	Use:   "curl FILE [NAME]",
	Short: "Print the shareable curl command for a request",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCurl,
}

func init() {
	rootCmd.AddCommand(curlCmd)
}

func runCurl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}

	requests := reqfile.ParseAll(string(data))
	if len(requests) == 0 {
		return fmt.Errorf("no requests found in %s", args[0])
	}

	req := requests[0]
	if len(args) == 2 {
		picked, ok := pickRequest(requests, args[1])
		if !ok {
			return fmt.Errorf("no request named %q in %s", args[1], args[0])
		}
		req = picked
	}

	fmt.Println(tcurlcmd.BuildCommand(req, cfg.Options()))
	return nil
}
