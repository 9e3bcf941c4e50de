package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/muurk/wsrecv/internal/server"
)

var analyzeVerbose bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.jsonl>...",
	Short: "Summarize message capture files",
	Long: `Read capture files written with --analysis-dir and print per-client and
per-type totals. With --verbose every message is dumped as well.`,
	Example: `  wsrecv analyze captures/capture-20240102.jsonl
  wsrecv analyze --verbose captures/*.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Dump every message")
	rootCmd.AddCommand(analyzeCmd)
}

// captureSummary aggregates records from one or more capture files
type captureSummary struct {
	Messages int
	Bytes    int
	ByType   map[string]int
	ByClient map[string]int
	Fragment int // messages reassembled from more than one frame
}

func summarize(records []server.MessageAnalysis) captureSummary {
	s := captureSummary{
		ByType:   make(map[string]int),
		ByClient: make(map[string]int),
	}
	for _, r := range records {
		s.Messages++
		s.Bytes += r.PayloadLen
		s.ByType[r.MessageType]++
		s.ByClient[r.RemoteAddr]++
		if r.Frames > 1 {
			s.Fragment++
		}
	}
	return s
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var all []server.MessageAnalysis
	for _, path := range args {
		records, err := server.ReadCapture(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d message(s)\n", path, len(records))
		if analyzeVerbose {
			for i := range records {
				dumpRecord(out, &records[i])
			}
		}
		all = append(all, records...)
	}

	s := summarize(all)
	fmt.Fprintf(out, "\nTotal: %d message(s), %d payload bytes, %d fragmented\n", s.Messages, s.Bytes, s.Fragment)
	printCounts(out, "By type", s.ByType)
	printCounts(out, "By client", s.ByClient)
	return nil
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-24s %d\n", k, counts[k])
	}
}

func dumpRecord(w io.Writer, r *server.MessageAnalysis) {
	fmt.Fprintf(w, "\n#%d %s %s %s (%d bytes, %d frame(s))\n",
		r.MessageNum, r.Timestamp.Format("15:04:05.000"), r.RemoteAddr, r.MessageType, r.PayloadLen, r.Frames)

	if r.PayloadText != "" {
		fmt.Fprintf(w, "  %s\n", r.PayloadText)
		return
	}
	payload, err := hex.DecodeString(r.PayloadHex)
	if err != nil {
		fmt.Fprintf(w, "  invalid payload_hex: %v\n", err)
		return
	}
	fmt.Fprint(w, hex.Dump(payload))
}
