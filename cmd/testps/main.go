// Команда testps - консольный клиент TestPS для студентов и администраторов.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/yourusername/testps-api/internal/session"
	"github.com/yourusername/testps-api/pkg/client"
)

const usage = `Usage: testps <command> [flags]

Commands:
  register   request an email code, verify it and create an account
  login      sign in and store the session token
  logout     forget the stored session
  tests      list available tests
  take       take a test with a countdown timer
  results    show your results, newest first
  analytics  show score analytics (--platform for admins)
  import     preview a CSV/XLSX question file and append it to a test (admin)
  export     download results of a test as CSV or XLSX (admin)
`

type command func(ctx context.Context, app *app, args []string) error

var commands = map[string]command{
	"register":  runRegister,
	"login":     runLogin,
	"logout":    runLogout,
	"tests":     runTests,
	"take":      runTake,
	"results":   runResults,
	"analytics": runAnalytics,
	"import":    runImport,
	"export":    runExport,
}

// app - общие зависимости подкоманд
type app struct {
	client *client.Client
	store  session.SessionStore
	in     *bufio.Reader
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	store, err := client.DefaultSessionStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	server := os.Getenv("TESTPS_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}

	a := &app{
		client: client.New(server),
		store:  store,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if token, user, err := store.Load(); err == nil {
		a.client.SetSession(token, user)
	} else if !errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, a, os.Args[2:]); err != nil {
		if client.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "error: session expired or missing, run `testps login`")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// prompt выводит вопрос и читает одну строку ответа
func (a *app) prompt(question string) (string, error) {
	fmt.Fprint(a.out, question)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *app) requireUser() error {
	if a.client.User() == nil {
		return fmt.Errorf("not logged in, run `testps login`")
	}
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return fmt.Errorf("--name and --email are required")
	}

	if err := a.client.SendOTP(ctx, *email); err != nil {
		return err
	}
	code, err := a.prompt(fmt.Sprintf("Enter the code sent to %s: ", *email))
	if err != nil {
		return err
	}
	if err := a.client.VerifyOTP(ctx, *email, code); err != nil {
		return err
	}

	if *password == "" {
		if *password, err = a.prompt("Password: "); err != nil {
			return err
		}
	}
	if err := a.client.Register(ctx, *name, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registered. Run `testps login` to sign in.")
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt("Email: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt("Password: "); err != nil {
			return err
		}
	}

	token, user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.store.Save(token, user); err != nil {
		return fmt.Errorf("logged in but failed to store session: %w", err)
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runTests(ctx context.Context, a *app, _ []string) error {
	tests, err := a.client.ListTests(ctx)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		fmt.Fprintln(a.out, "No tests yet.")
		return nil
	}
	for _, t := range tests {
		fmt.Fprintf(a.out, "%4d  %-40s %-20s %2d questions, %d min\n",
			t.ID, t.Title, t.Subject, t.QuestionCount(), t.EffectiveDuration())
	}
	return nil
}

func runResults(ctx context.Context, a *app, _ []string) error {
	if err := a.requireUser(); err != nil {
		return err
	}
	results, err := a.client.UserResults(ctx, a.client.User().ID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.out, "No attempts yet.")
		return nil
	}
	for _, r := range results {
		title := fmt.Sprintf("test #%d", r.TestID)
		if r.Test != nil {
			title = r.Test.Title
		}
		fmt.Fprintf(a.out, "%s  %-40s %d/%d\n", r.Date.Local().Format("2006-01-02 15:04"), title, r.Score, r.TotalQuestions)
	}
	return nil
}

func runAnalytics(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("analytics")
	platform := fs.Bool("platform", false, "show platform-wide analytics (admin)")
	userID := fs.Uint("user", 0, "user id (defaults to the logged in user)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireUser(); err != nil {
		return err
	}

	if *platform {
		summary, err := a.client.PlatformAnalytics(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Tests: %d, questions: %d\n", summary.TotalTests, summary.TotalQuestions)
		if summary.MostAttemptedTest != nil {
			fmt.Fprintf(a.out, "Most attempted: %s (%d attempts)\n", summary.MostAttemptedTest.Title, summary.MostAttemptedTest.Attempts)
		}
		for _, t := range summary.AvgScorePerTest {
			fmt.Fprintf(a.out, "%4d  %-40s avg %.2f over %d attempts\n", t.TestID, t.Title, t.Avg, t.Attempts)
		}
		return nil
	}

	id := uint(*userID)
	if id == 0 {
		id = a.client.User().ID
	}
	summary, err := a.client.UserAnalytics(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attempts: %d\nAverage: %.2f\nHighest: %d\nLowest: %d\n",
		summary.TotalTests, summary.AverageScore, summary.HighestScore, summary.LowestScore)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("export")
	testID := fs.Uint("test", 0, "test id")
	format := fs.String("format", "csv", "csv or xlsx")
	output := fs.StringP("output", "o", "", "output file (default test_<id>_results.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *testID == 0 {
		return fmt.Errorf("--test is required")
	}
	if *output == "" {
		*output = fmt.Sprintf("test_%d_results.%s", *testID, *format)
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := a.client.ExportResults(ctx, uint(*testID), *format, f); err != nil {
		f.Close()
		_ = os.Remove(*output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", *output)
	return nil
}
