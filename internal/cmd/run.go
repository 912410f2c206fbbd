package cmd

import (
	"fmt"
	"os"
	"strings"

	"curldeck/pkg/curlexec"
	"curldeck/pkg/curlout"
	"curldeck/pkg/errmap"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/reqfile"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run FILE [NAME]",
	Short: "Execute a request from a request file",
	Long: `Execute a request defined in a request file through curl.

With no NAME the first request in the file runs. NAME is matched exactly
first, then fuzzily against the request names in the file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	executor := curlexec.NewWithBinary(cfg.CurlBinary, newLogger())
	resp, err := executor.Execute(cmd.Context(), req, cfg.Options())
	if err != nil {
		return fmt.Errorf("%s", errmap.Friendly(err))
	}

	fmt.Printf("%d %s  (%0.0f ms, %d bytes)\n\n", resp.Status, resp.StatusText, resp.TimeMs, resp.SizeBytes)
	fmt.Println(curlout.FormatBody(resp.Body, resp.ContentType))
	return nil
}

// pickRequest finds a request by name: exact match wins, then the best fuzzy
// match.
func pickRequest(requests []mrequest.Request, name string) (mrequest.Request, bool) {
	names := make([]string, len(requests))
	for i, r := range requests {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
		names[i] = r.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return mrequest.Request{}, false
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
		}
	}
	return requests[best.OriginalIndex], true
}
