package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/templates"
	"github.com/terra-clan/roadmap-engine/internal/tracker"
)

var errHelp = errors.New("help provided")

// isHelp reports whether err only means usage was printed
func isHelp(err error) bool {
	return errors.Is(err, errHelp) || errors.Is(err, flag.ErrHelp)
}

type commandLine struct {
	loader  *templates.Loader
	tracker *tracker.Tracker
	out     io.Writer
	errOut  io.Writer
}

// fileList collects a repeatable -progress flag
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.errOut, "Usage:")
	fmt.Fprintln(cli.errOut, "  templates                                                   - list loaded roadmaps")
	fmt.Fprintln(cli.errOut, "  validate -file PATH                                         - check a roadmap file")
	fmt.Fprintln(cli.errOut, "  report   -template ID -mentee ID [-progress FILE] [-format json|yaml]")
	fmt.Fprintln(cli.errOut, "  mark     -template ID -mentee ID -topic ID (-problem ID | -resource ID) -status STATUS [-progress FILE]")
	fmt.Fprintln(cli.errOut, "  phase    -template ID -mentee ID -phase ID [-progress FILE]")
	fmt.Fprintln(cli.errOut, "  overview -template ID -progress FILE [-progress FILE ...]")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.errOut)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "templates":
		return cli.listTemplates()

	case "validate":
		fs := cli.newFlagSet("validate")
		file := fs.String("file", "", "Roadmap YAML file to validate.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *file == "" {
			fs.Usage()
			return errHelp
		}
		return cli.validate(*file)

	case "report":
		fs := cli.newFlagSet("report")
		tmplID := fs.String("template", "", "Roadmap template ID.")
		mentee := fs.String("mentee", "", "Mentee ID.")
		format := fs.String("format", "json", "Output format: json or yaml.")
		var files fileList
		fs.Var(&files, "progress", "Progress snapshot (YAML) to import. Repeatable.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *tmplID == "" || *mentee == "" {
			fs.Usage()
			return errHelp
		}
		if err := cli.importSnapshots(ctx, *tmplID, files); err != nil {
			return err
		}
		report, err := cli.tracker.Report(ctx, *mentee, *tmplID)
		if err != nil {
			return err
		}
		return cli.encode(report, *format)

	case "mark":
		fs := cli.newFlagSet("mark")
		tmplID := fs.String("template", "", "Roadmap template ID.")
		mentee := fs.String("mentee", "", "Mentee ID.")
		topic := fs.String("topic", "", "Topic ID.")
		problem := fs.String("problem", "", "Problem ID.")
		resource := fs.String("resource", "", "Resource ID.")
		status := fs.String("status", "", "not_started, in_progress or completed.")
		var files fileList
		fs.Var(&files, "progress", "Progress snapshot (YAML) to import. Repeatable.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *tmplID == "" || *mentee == "" || *topic == "" || *status == "" || (*problem == "") == (*resource == "") {
			fs.Usage()
			return errHelp
		}
		if err := cli.importSnapshots(ctx, *tmplID, files); err != nil {
			return err
		}

		var err error
		if *problem != "" {
			_, err = cli.tracker.MarkProblem(ctx, *mentee, *tmplID, *topic, *problem, models.ItemStatus(*status))
		} else {
			_, err = cli.tracker.MarkResource(ctx, *mentee, *tmplID, *topic, *resource, models.ItemStatus(*status))
		}
		if err != nil {
			return err
		}
		return cli.printSnapshot(ctx, *mentee, *tmplID)

	case "phase":
		fs := cli.newFlagSet("phase")
		tmplID := fs.String("template", "", "Roadmap template ID.")
		mentee := fs.String("mentee", "", "Mentee ID.")
		phase := fs.String("phase", "", "Phase ID to move the cursor to.")
		var files fileList
		fs.Var(&files, "progress", "Progress snapshot (YAML) to import. Repeatable.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *tmplID == "" || *mentee == "" || *phase == "" {
			fs.Usage()
			return errHelp
		}
		if err := cli.importSnapshots(ctx, *tmplID, files); err != nil {
			return err
		}
		if _, err := cli.tracker.SetCurrentPhase(ctx, *mentee, *tmplID, *phase); err != nil {
			return err
		}
		return cli.printSnapshot(ctx, *mentee, *tmplID)

	case "overview":
		fs := cli.newFlagSet("overview")
		tmplID := fs.String("template", "", "Roadmap template ID.")
		format := fs.String("format", "json", "Output format: json or yaml.")
		var files fileList
		fs.Var(&files, "progress", "Progress snapshot (YAML) to import. Repeatable.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *tmplID == "" {
			fs.Usage()
			return errHelp
		}
		if err := cli.importSnapshots(ctx, *tmplID, files); err != nil {
			return err
		}
		summaries, err := cli.tracker.Overview(ctx, *tmplID)
		if err != nil {
			return err
		}
		return cli.encode(summaries, *format)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listTemplates() error {
	for _, tmpl := range cli.loader.List() {
		fmt.Fprintf(cli.out, "%s\t%s\t%s\t%d phases\t%d topics\n",
			tmpl.ID, tmpl.Title, tmpl.Tier, len(tmpl.Phases), tmpl.TopicCount())
	}
	return nil
}

func (cli *commandLine) validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	tmpl, err := cli.loader.Parse(data)
	if err != nil {
		var verr *templates.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(cli.out, "%s: %s\n", f.Field, f.Error)
			}
		}
		return err
	}

	fmt.Fprintf(cli.out, "ok: %s (%d phases, %d topics)\n", tmpl.ID, len(tmpl.Phases), tmpl.TopicCount())
	return nil
}

// importSnapshots loads progress snapshots through the tracker. Every
// snapshot must overlay templateID and fit the template.
func (cli *commandLine) importSnapshots(ctx context.Context, templateID string, files []string) error {
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read progress: %w", err)
		}

		var p models.MenteeRoadmapProgress
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse progress %s: %w", file, err)
		}
		if p.MenteeID == "" {
			return fmt.Errorf("progress %s: mentee_id is required", file)
		}
		if p.TemplateID != templateID {
			return fmt.Errorf("%w: progress %s overlays template %q, not %q",
				models.ErrUnknownReference, file, p.TemplateID, templateID)
		}

		if err := cli.tracker.Import(ctx, &p); err != nil {
			return fmt.Errorf("failed to import progress %s: %w", file, err)
		}
	}
	return nil
}

// printSnapshot writes the stored overlay as YAML, ready to be passed back
// with -progress
func (cli *commandLine) printSnapshot(ctx context.Context, menteeID, templateID string) error {
	p, err := cli.tracker.Progress(ctx, menteeID, templateID)
	if err != nil {
		return err
	}
	return cli.encode(p, "yaml")
}

func (cli *commandLine) encode(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(cli.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %q", format)
	}
}
