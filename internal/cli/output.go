package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// resultError turns a failed Result into the command's error, keeping the
// per-field messages for display.
type resultError struct {
	res models.Result
}

func (e *resultError) Error() string {
	var b strings.Builder

	b.WriteString(e.res.Error)

	if appErr, ok := errors.IsAppError(e.res.Err); ok {
		for _, line := range appErr.FieldSummary() {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}

	return b.String()
}

func (e *resultError) Unwrap() error {
	return e.res.Err
}

// report prints a successful Result's message, or returns the failure.
func report(w io.Writer, res models.Result) error {
	if !res.Success {
		return &resultError{res: res}
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatPrice renders whole amounts with space separated thousands, the way
// the shop prints prices.
func formatPrice(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}

		b.WriteRune(r)
	}

	out := sign + b.String()
	if frac != "00" {
		out += "." + frac
	}

	return out + " so'm"
}

func productPrice(p *models.Product) string {
	if !p.HasDiscount() {
		return formatPrice(p.Price)
	}

	return fmt.Sprintf("%s (-%d%%, was %s)", formatPrice(p.DiscountedPrice()), p.DiscountPercentage, formatPrice(p.Price))
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.AddValidationError(what, fmt.Sprintf("%q is not a valid id", arg))
	}

	return id, nil
}

// secret returns value, or reads one line from the command's input when the
// flag was left empty.
func secret(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")

	// a terminal gets no echo; piped input is read as one line
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", err
		}

		return requirePassword(string(pw))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}

		return requirePassword("")
	}

	return requirePassword(strings.TrimRight(scanner.Text(), "\r\n"))
}

func requirePassword(pw string) (string, error) {
	if pw == "" {
		return "", errors.AddValidationError("password", "A password is required.")
	}

	return pw, nil
}
