package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/projdesk/projdesk/pkg/proj"
)

type ListCommand struct {
	config *Config
	query  string
	out    io.Writer
}

func NewListCommand(cfg *Config) *ffcli.Command {
	cmd := ListCommand{
		config: cfg,
		out:    os.Stdout,
	}

	fs := flag.NewFlagSet("projdesk list", flag.ContinueOnError)
	fs.StringVar(&cmd.query, "q", "", "Only list projects whose name or description contains this text.")
	fs.String("config", "", "Path to a config file.")
	cfg.RegisterFlags(fs)

	return &ffcli.Command{
		Name:       "list",
		ShortUsage: "projdesk list [flags]",
		ShortHelp:  "Print the stored projects.",
		FlagSet:    fs,
		Options:    commandOptions(),
		Exec:       cmd.Exec,
	}
}

func (cmd *ListCommand) Exec(ctx context.Context, _ []string) error {
	store, closeStore, err := cmd.config.openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore() //nolint:errcheck

	repo, err := cmd.config.newRepository(store)
	if err != nil {
		return err
	}

	projects, err := repo.List(ctx, proj.ListFilter{SearchExpr: cmd.query})
	if err != nil {
		return err
	}

	return writeProjects(cmd.out, projects)
}

func writeProjects(w io.Writer, projects []proj.Project) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tNAME\tUPDATED")

	for _, p := range projects {
		updated := time.UnixMilli(p.UpdatedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%v\t%v\t%v\n", p.ID, p.Name, updated)
	}

	return tw.Flush()
}
