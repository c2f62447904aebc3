package probe

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Render writes one table row per sample followed by a summary line.
func Render(w io.Writer, r *Report, colored bool) error {
	pass, fail, warn := plain, plain, plain
	if colored {
		pass = color.New(color.FgGreen, color.Bold).SprintFunc()
		fail = color.New(color.FgRed, color.Bold).SprintFunc()
		warn = color.New(color.FgYellow).SprintFunc()
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Requested", "Predicted", "Confidence", "Latency", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(r.Samples))
	for i, s := range r.Samples {
		row := []string{strconv.Itoa(i + 1), s.Requested, "-", "-", s.Latency.Round(time.Microsecond).String()}
		switch {
		case !s.OK():
			row = append(row, fail("FAIL: "+s.Error))
		case s.Prediction.Label != s.Requested:
			row[2] = warn(s.Prediction.Label)
			row[3] = fmt.Sprintf("%.1f%%", s.Prediction.Confidence*100)
			row = append(row, pass("OK"))
		default:
			row[2] = s.Prediction.Label
			row[3] = fmt.Sprintf("%.1f%%", s.Prediction.Confidence*100)
			row = append(row, pass("OK"))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	status := pass("PASSED")
	if r.Failed > 0 {
		status = fail("FAILED")
	}
	_, err := fmt.Fprintf(w, "%s: %d verified, %d failed, %d/%d predicted in the requested tier (%v)\n",
		status, r.Passed, r.Failed, r.Matched, len(r.Samples), r.Duration.Round(time.Millisecond))
	return err
}

func plain(a ...any) string { return fmt.Sprint(a...) }
