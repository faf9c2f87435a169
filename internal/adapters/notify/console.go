package notify

// Console prints the end-of-cycle report: executed orders, rejections, and
// the resulting portfolio as a formatted table.

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"rwafolio/internal/domain"
)

// Console implements ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole creates a console notifier writing to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NotifyCycle prints the cycle outcome.
func (c *Console) NotifyCycle(snapshot domain.PortfolioSnapshot, executed []domain.ExecutedOrder, rejected []string) {
	fmt.Fprintf(c.out, "\n=== Cycle report — total value %.2f USDT ===\n", snapshot.TotalValue)

	if len(executed) > 0 {
		fmt.Fprintln(c.out, "\nExecuted orders:")
		table := tablewriter.NewWriter(c.out)
		table.Header("Symbol", "Side", "Amount", "Price", "Status")
		for _, o := range executed {
			table.Append(o.Symbol, string(o.Side),
				fmt.Sprintf("%.6f", o.Amount),
				fmt.Sprintf("%.4f", o.Price),
				o.Status)
		}
		table.Render()
	}

	for _, reason := range rejected {
		fmt.Fprintf(c.out, "rejected: %s\n", reason)
	}

	fmt.Fprintln(c.out, "\nPortfolio:")
	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Holdings", "Value (USDT)", "Allocation")

	symbols := make([]string, 0, len(snapshot.Holdings))
	for s := range snapshot.Holdings {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, s := range symbols {
		table.Append(s,
			fmt.Sprintf("%.6f", snapshot.Holdings[s]),
			fmt.Sprintf("%.2f", snapshot.Values[s]),
			fmt.Sprintf("%.1f%%", snapshot.Alloc[s]*100))
	}
	table.Render()
}
