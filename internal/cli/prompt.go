package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// prompter asks for missing selections on a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) customer(table *types.CustomerTable) (string, error) {
	all := table.All()
	fmt.Fprintln(p.out, "Select a customer by entering the corresponding number:")
	fmt.Fprintf(p.out, " %s -> All\n", types.AllCustomersKey)
	for _, c := range all {
		fmt.Fprintf(p.out, " %s -> %s\n", c.Key, c.Name)
	}
	return p.ask(fmt.Sprintf("Enter the customer number (%s-%s): ", types.AllCustomersKey, all[len(all)-1].Key))
}

func (p *prompter) query() (string, error) {
	fmt.Fprintln(p.out, "\nSelect a query to run:")
	for _, sel := range query.All() {
		fmt.Fprintf(p.out, " %s -> %s\n", sel.Key, sel.Title)
	}
	return p.ask("Enter the query number (1-3): ")
}

func (p *prompter) period(year, month string) (query.PeriodInput, error) {
	var err error
	if year == "" {
		if year, err = p.ask("Enter the report year (e.g., 2025): "); err != nil {
			return query.PeriodInput{}, err
		}
	}
	if month == "" {
		if month, err = p.ask("Enter the report month (1-12): "); err != nil {
			return query.PeriodInput{}, err
		}
	}
	return query.PeriodInput{Year: year, Month: month}, nil
}
