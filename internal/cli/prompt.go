package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/crux"
)

// answers is what the guided setup collects.
type answers struct {
	URL     string
	UseCrUX bool
	Device  string
	Weeks   int
	Open    bool
}

var errInputClosed = errors.New("input closed before setup finished")

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// guidedSetup asks for the analysis options one at a time. Device and
// history length are only asked for when field data is requested.
func (p *prompter) guidedSetup() (answers, error) {
	st := newStyles(p.out)
	out := answers{Device: analyses.DeviceMobile, Weeks: crux.DefaultPeriods}

	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, st.title.Render("Azion PageSpeed Analyzer"))
	fmt.Fprintln(p.out, strings.Repeat("=", 40))

	for {
		raw, err := p.ask("\nWebsite URL: ")
		if err != nil {
			return answers{}, err
		}
		if raw == "" {
			fmt.Fprintln(p.out, st.bad.Render("URL required"))
			continue
		}
		u, err := analyses.NormalizeURL(raw)
		if err != nil {
			fmt.Fprintln(p.out, st.bad.Render(err.Error()))
			continue
		}
		out.URL = u
		break
	}

	fmt.Fprintln(p.out, "\nAnalysis type:")
	fmt.Fprintln(p.out, "1. PageSpeed only (fast)")
	fmt.Fprintln(p.out, "2. CrUX + PageSpeed (comprehensive)")
	for {
		choice, err := p.ask("Choice (1/2): ")
		if err != nil {
			return answers{}, err
		}
		if choice == "1" || choice == "2" {
			out.UseCrUX = choice == "2"
			break
		}
		fmt.Fprintln(p.out, st.bad.Render("Enter 1 or 2"))
	}

	if out.UseCrUX {
		fmt.Fprintln(p.out, "\nDevice:")
		fmt.Fprintln(p.out, "1. Mobile  2. Desktop  3. Tablet")
		choice, err := p.ask("Choice (1/2/3): ")
		if err != nil {
			return answers{}, err
		}
		switch choice {
		case "2":
			out.Device = analyses.DeviceDesktop
		case "3":
			out.Device = analyses.DeviceTablet
		}
	}

	open, err := p.ask("\nOpen report? (y/N): ")
	if err != nil {
		return answers{}, err
	}
	out.Open = strings.EqualFold(open, "y")

	if out.UseCrUX {
		raw, err := p.ask(fmt.Sprintf("\nCrUX history weeks (1-40, default %d): ", crux.DefaultPeriods))
		if err != nil {
			return answers{}, err
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			out.Weeks = crux.ClampWeeks(n)
		}
	}
	return out, nil
}
