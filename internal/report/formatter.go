package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"KiteBacktest/internal/broker"
	"KiteBacktest/internal/model"
	"KiteBacktest/internal/recorder"
)

const dateLayout = "2006-01-02"

// FormatBanner renders the usage banner shown by the CLI.
func FormatBanner() string {
	var b strings.Builder
	b.WriteString("╔" + strings.Repeat("=", 58) + "╗\n")
	b.WriteString("║" + center("KITE API DEV MODE - Backtesting Setup", 58) + "║\n")
	b.WriteString("║" + center("Kite authentication + Yahoo daily data", 58) + "║\n")
	b.WriteString("╚" + strings.Repeat("=", 58) + "╝\n\n")
	b.WriteString("WORKFLOW:\n")
	b.WriteString("  1. kitedata login                      get the login URL\n")
	b.WriteString("  2. kitedata auth --request-token TOKEN exchange the callback token\n")
	b.WriteString("  3. kitedata fetch [--days N]           download daily candles\n")
	b.WriteString("  4. kitedata status                     list downloaded files\n")
	b.WriteString("  5. kitedata analyze                    summarise close prices\n")
	return b.String()
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// FormatAuthInstructions renders the login URL and the manual steps that
// lead to a request token.
func FormatAuthInstructions(loginURL string) string {
	var b strings.Builder
	writeTitle(&b, "KITE API - AUTHENTICATION FLOW")
	b.WriteString("\n🔐 Login URL (copy and paste in browser):\n")
	b.WriteString(fmt.Sprintf("   %s\n\n", loginURL))
	b.WriteString("Steps:\n")
	b.WriteString("1. Open the URL above in your browser\n")
	b.WriteString("2. Log in with your Zerodha credentials\n")
	b.WriteString("3. Complete 2FA if prompted\n")
	b.WriteString("4. You'll be redirected to the callback URL\n")
	b.WriteString("5. Copy the 'request_token' from the callback\n")
	b.WriteString("\nThen run:\n")
	b.WriteString(HelpStyle.Render("   kitedata auth --request-token YOUR_TOKEN") + "\n")
	return b.String()
}

// FormatAuthSuccess confirms a completed exchange.
func FormatAuthSuccess(session broker.Session, tokenFile string) string {
	name := session.UserName
	if name == "" {
		name = "User"
	}
	var b strings.Builder
	b.WriteString("✅ Authentication successful!\n")
	b.WriteString(fmt.Sprintf("✅ Access token saved to %s\n", tokenFile))
	b.WriteString(fmt.Sprintf("✅ You're now registered as: %s\n", name))
	return b.String()
}

// FormatNotAuthenticated tells the user how to obtain a token.
func FormatNotAuthenticated() string {
	var b strings.Builder
	b.WriteString("\n" + ErrorStyle.Render("❌ NOT AUTHENTICATED") + "\n")
	b.WriteString("You must authenticate first:\n")
	b.WriteString(HelpStyle.Render("   kitedata login") + "\n")
	return b.String()
}

// FormatFetchHeader is printed before a fetch run starts.
func FormatFetchHeader(symbols, days int, source string) string {
	var b strings.Builder
	writeTitle(&b, "FETCHING HISTORICAL DATA")
	b.WriteString("Status: ✅ Authenticated with Kite API\n")
	b.WriteString(fmt.Sprintf("Data Source: %s\n", source))
	b.WriteString(fmt.Sprintf("\nFetching data for %d stocks (%d days)...\n", symbols, days))
	return b.String()
}

// FormatFetchSummary lists each symbol's outcome and the success tally.
func FormatFetchSummary(s *model.FetchSummary) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, r := range s.Results {
		if r.Saved {
			b.WriteString(fmt.Sprintf("   ✅ %s (%s): %d candles\n", r.Symbol, r.Ticker, r.Candles))
			continue
		}
		b.WriteString(fmt.Sprintf("   ❌ %s (%s): %s\n", r.Symbol, r.Ticker, r.Code))
	}
	b.WriteString(fmt.Sprintf("\n✅ Successfully saved %d/%d stocks\n", s.Succeeded, s.Total))
	return b.String()
}

// FormatStatusReport renders the data directory listing.
func FormatStatusReport(r *model.StatusReport) string {
	var b strings.Builder
	writeTitle(&b, "DATA STATUS REPORT")

	if !r.DirExists {
		b.WriteString(fmt.Sprintf("⚠️  Directory %s/ does not exist\n", r.Dir))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("\n✅ Found %d CSV files:\n", len(r.Files)))
	for _, f := range r.Files {
		b.WriteString(fmt.Sprintf("   • %s (%s, %d rows)\n", f.Name, humanize.IBytes(uint64(f.SizeBytes)), f.Rows))
	}

	if len(r.Missing) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️  Missing data for: %s\n", strings.Join(r.Missing, ", ")))
	} else {
		b.WriteString(fmt.Sprintf("\n✅ All %d stocks have data!\n", r.Configured))
	}
	return b.String()
}

// FormatLastRun describes the most recent recorded fetch run. run may be nil.
func FormatLastRun(run *recorder.RunEvent, at time.Time, failed []string) string {
	if run == nil {
		return "\nNo fetch runs recorded yet.\n"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\nLast fetch: %s (%s), %d/%d saved, %d days\n",
		at.Format("2006-01-02 15:04"), humanize.Time(at), run.Succeeded, run.Total, run.Days))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("   failed: %s\n", strings.Join(failed, ", ")))
	}
	return b.String()
}

// FormatAnalysis renders per-symbol close price summaries.
func FormatAnalysis(results []model.SymbolAnalysis) string {
	var b strings.Builder
	writeTitle(&b, "DATA ANALYSIS")

	if len(results) == 0 {
		b.WriteString("\nNo data to analyze. Run fetch first.\n")
		return b.String()
	}

	for _, a := range results {
		b.WriteString(fmt.Sprintf("\n%s:\n", a.Symbol))
		b.WriteString(fmt.Sprintf("  Records: %d\n", a.Records))
		b.WriteString(fmt.Sprintf("  Period: %s to %s\n", a.First.Format(dateLayout), a.Last.Format(dateLayout)))
		b.WriteString(fmt.Sprintf("  Price Range: ₹%.2f - ₹%.2f\n", a.MinClose, a.MaxClose))
		b.WriteString(fmt.Sprintf("  Current: ₹%.2f (%.0f%% of range)\n", a.LastClose, a.Position*100))
	}
	return b.String()
}
