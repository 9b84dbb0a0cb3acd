package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/masomo-records/core/subject"
	"github.com/trezcool/masomo-records/storage/database"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp         = errors.New("help provided")
	errAborted      = errors.New("aborted")
	errConfirmation = errors.New("stdin is not a terminal: pass -yes to confirm")
)

type commandLine struct {
	store  *database.Store
	subSvc subject.Service
	in     io.Reader
	out    io.Writer
}

func newCommandLine(store *database.Store, subSvc subject.Service) *commandLine {
	return &commandLine{store: store, subSvc: subSvc, in: os.Stdin, out: os.Stdout}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  indexes                                  - create the database indexes")
	fmt.Fprintln(cli.out, "  seed -file FILE                          - load classes, subjects, teachers & students from a YAML fixture")
	fmt.Fprintln(cli.out, "  deletesubjects -class ID|-school ID [-yes] - delete subjects & clean their references")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedFile := seedCmd.String("file", "", "Path to the YAML fixture.")

	deleteSubjectsCmd := flag.NewFlagSet("deletesubjects", flag.ContinueOnError)
	deleteSubjectsClass := deleteSubjectsCmd.String("class", "", "Delete the subjects of this class.")
	deleteSubjectsSchool := deleteSubjectsCmd.String("school", "", "Delete the subjects of this school.")
	deleteSubjectsYes := deleteSubjectsCmd.Bool("yes", false, "Do not ask for confirmation.")

	switch args[1] {
	case "indexes":
		if err := cli.store.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "indexes ready (%s)\n", cli.store.Engine)
		return nil

	case "seed":
		seedCmd.SetOutput(cli.out)
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(ctx, *seedFile)

	case "deletesubjects":
		deleteSubjectsCmd.SetOutput(cli.out)
		if err := deleteSubjectsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		classID, schoolID := strings.TrimSpace(*deleteSubjectsClass), strings.TrimSpace(*deleteSubjectsSchool)
		if (classID == "") == (schoolID == "") { // exactly one scope
			deleteSubjectsCmd.Usage()
			return errHelp
		}
		if !*deleteSubjectsYes {
			if err := cli.confirm(classID, schoolID); err != nil {
				return err
			}
		}
		return cli.deleteSubjects(ctx, classID, schoolID)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) confirm(classID, schoolID string) error {
	if !isTerminalFunc(int(syscall.Stdin)) {
		return errConfirmation
	}
	scope := "class " + classID
	if schoolID != "" {
		scope = "school " + schoolID
	}
	fmt.Fprintf(cli.out, "Delete every subject of %s and blank all students' exam results & attendance? [y/N] ", scope)

	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}

func (cli *commandLine) deleteSubjects(ctx context.Context, classID, schoolID string) error {
	var (
		deleted []subject.Subject
		report  subject.CascadeReport
		err     error
	)
	if classID != "" {
		deleted, report, err = cli.subSvc.DeleteByClass(ctx, classID)
	} else {
		deleted, report, err = cli.subSvc.DeleteBySchool(ctx, schoolID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d subject(s) deleted; %d teacher(s) & %d student(s) updated\n",
		len(deleted), report.TeachersUpdated, report.StudentsUpdated)
	return nil
}
