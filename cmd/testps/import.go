package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/testps-api/internal/handler/dto"
	"github.com/yourusername/testps-api/internal/importer"
)

// runImport загружает файл на предпросмотр, показывает отчет и после подтверждения
// добавляет валидные вопросы в конец теста
func runImport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("import")
	yes := fs.BoolP("yes", "y", false, "append without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: testps import <test id> <file.csv|file.xlsx>")
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid test id %q", fs.Arg(0))
	}
	path := fs.Arg(1)

	test, err := a.client.GetTest(ctx, uint(id))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := a.client.ImportPreview(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	printReport(a, report)

	draft := importer.NewDraft(test.Questions)
	if err := draft.Stage(report); err != nil {
		return err
	}

	if !*yes {
		answer, err := a.prompt(fmt.Sprintf("Append %d questions to %q? [y/N] ", len(draft.Pending()), test.Title))
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			draft.Cancel()
			fmt.Fprintln(a.out, "Import cancelled.")
			return nil
		}
	}

	added := draft.Confirm()
	questions := draft.Questions()
	if err := a.client.UpdateTest(ctx, test.ID, dto.UpdateTestRequest{Questions: &questions}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %d questions, test now has %d.\n", added, len(questions))
	return nil
}

func printReport(a *app, report *importer.Report) {
	fmt.Fprintln(a.out, report.Message)
	for i, q := range report.Questions {
		fmt.Fprintf(a.out, "%3d. %s\n", i+1, q.Question)
		for j, option := range q.Options {
			mark := " "
			if j == q.CorrectAnswer {
				mark = "+"
			}
			fmt.Fprintf(a.out, "      %s %s\n", mark, option)
		}
	}
	for _, e := range report.Errors {
		fmt.Fprintln(a.out, "  !", e)
	}
}
