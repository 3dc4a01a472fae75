package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/testps-api/internal/session"
)

const takeHelp = `Commands: 1-4 select option, c clear, m mark for review, n next, p previous,
j N jump to question N, s submit, y confirm, x cancel, q quit without submitting`

func runTake(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("take")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: testps take <test id>")
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid test id %q", fs.Arg(0))
	}
	if err := a.requireUser(); err != nil {
		return err
	}

	test, err := a.client.GetTest(ctx, uint(id))
	if err != nil {
		return err
	}
	if test.QuestionCount() == 0 {
		return fmt.Errorf("test %q has no questions", test.Title)
	}

	s := session.New(test, a.client)
	if err := s.Start(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %d questions, %d minutes\n%s\n\n", test.Title, test.QuestionCount(), test.EffectiveDuration(), takeHelp)
	inputCtx, stopInput := context.WithCancel(ctx)
	defer stopInput()

	outcome, err := play(ctx, s, readLines(inputCtx, a.in), a.out)
	if err != nil {
		return err
	}
	if outcome != nil {
		fmt.Fprintf(a.out, "\nSubmitted. Score: %d/%d\n", outcome.Score, outcome.Total)
	}
	return nil
}

// readLines читает строки в отдельной горутине; канал закрывается на EOF.
// После отмены ctx горутина не блокируется на отправке и завершается
// при следующей прочитанной строке.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// play ведет попытку: запускает таймер и применяет команды пользователя.
// Возвращает nil outcome, если пользователь вышел без отправки.
func play(ctx context.Context, s *session.Session, lines <-chan string, out io.Writer) (*session.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timerDone := make(chan error, 1)
	go func() { timerDone <- s.Run(ctx) }()

	render(out, s.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.Done():
			return s.Snapshot().Outcome, nil
		case line, ok := <-lines:
			if !ok {
				return nil, io.ErrUnexpectedEOF
			}
			quit, err := apply(ctx, s, line)
			if quit {
				return nil, nil
			}
			if err != nil {
				fmt.Fprintln(out, "!", err)
			}
			select {
			case <-s.Done():
				return s.Snapshot().Outcome, nil
			default:
			}
			render(out, s.Snapshot())
		}
	}
}

// apply выполняет одну команду. quit=true означает выход без отправки.
func apply(ctx context.Context, s *session.Session, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch cmd := fields[0]; cmd {
	case "1", "2", "3", "4":
		option, _ := strconv.Atoi(cmd)
		return false, s.SelectOption(option - 1)
	case "c":
		return false, s.Clear()
	case "m":
		return false, s.ToggleMark()
	case "n":
		return false, s.Next()
	case "p":
		return false, s.Previous()
	case "j":
		if len(fields) != 2 {
			return false, errors.New("usage: j <question number>")
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return false, fmt.Errorf("invalid question number %q", fields[1])
		}
		return false, s.JumpTo(n - 1)
	case "s":
		return false, s.RequestSubmit()
	case "y":
		_, err := s.ConfirmSubmit(ctx)
		return false, err
	case "x":
		return false, s.CancelSubmit()
	case "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

var paletteMarks = map[session.PaletteStatus]string{
	session.StatusCurrent:     ">",
	session.StatusReview:      "?",
	session.StatusAnswered:    "*",
	session.StatusNotAnswered: ".",
}

func render(out io.Writer, snap session.Snapshot) {
	fmt.Fprintf(out, "\n[%s] %02d:%02d left, answered %d/%d\n",
		snap.Title, snap.Remaining/60, snap.Remaining%60, snap.Answered, len(snap.Answers))

	var palette strings.Builder
	for i, status := range snap.Palette {
		fmt.Fprintf(&palette, "%d%s ", i+1, paletteMarks[status])
	}
	fmt.Fprintln(out, strings.TrimSpace(palette.String()))

	if snap.Question != nil {
		fmt.Fprintf(out, "\nQ%d. %s\n", snap.Current+1, snap.Question.Question)
		for i, option := range snap.Question.Options {
			selected := " "
			if snap.Answers[snap.Current] == i {
				selected = "x"
			}
			fmt.Fprintf(out, "  [%s] %d) %s\n", selected, i+1, option)
		}
		if snap.Marked[snap.Current] {
			fmt.Fprintln(out, "  (marked for review)")
		}
	}

	if snap.State == session.StateConfirmingSubmit {
		switch {
		case snap.InFlight:
			fmt.Fprintln(out, "Submitting...")
		case snap.LastErr != nil:
			fmt.Fprintf(out, "Submission failed: %v. Press y to retry.\n", snap.LastErr)
		default:
			fmt.Fprintf(out, "Submit %d answered of %d? y to confirm, x to go back.\n", snap.Answered, len(snap.Answers))
		}
	}
}
