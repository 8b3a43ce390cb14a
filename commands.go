package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invertedv/voters/audience"
	"github.com/invertedv/voters/calllist"
	"github.com/invertedv/voters/chload"
	"github.com/invertedv/voters/efficiency"
	"github.com/invertedv/voters/raw"
	"github.com/invertedv/voters/report"
	"github.com/spf13/cobra"
)

// document is the output of the parse command.
type document struct {
	BatchID uuid.UUID       `json:"batch_id"`
	Source  string          `json:"source"`
	Parsed  time.Time       `json:"parsed"`
	Summary *report.Summary `json:"summary"`
	Voters  []*raw.Voter    `json:"voters"`
}

func (a *app) parseCmd() *cobra.Command {
	var out, metrics string
	var samples int
	cmd := &cobra.Command{
		Use:   "parse <export>",
		Short: "Parse the export to JSON and report deviations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, d, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sum := report.Summarize(res.Records, res.Skipped, samples)
			doc := &document{
				BatchID: uuid.New(),
				Source:  filepath.Base(args[0]),
				Parsed:  time.Now().UTC(),
				Summary: sum,
				Voters:  res.Voters(),
			}
			if e := raw.WriteJSON(out, doc); e != nil {
				return e
			}
			sum.Print(cmd.OutOrStdout())

			if metrics != "" {
				m := report.NewMetrics()
				m.Observe(sum, d)
				if e := m.WriteTextfile(metrics); e != nil {
					return e
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "voters.json", "output JSON file")
	cmd.Flags().IntVar(&samples, "samples", 10, "sample rows kept per field in the summary")
	cmd.Flags().StringVar(&metrics, "metrics", "", "write Prometheus textfile metrics here")
	return cmd
}

func (a *app) efficiencyCmd() *cobra.Command {
	var out string
	var parties []string
	var fromVoters bool
	cmd := &cobra.Command{
		Use:   "efficiency <export>",
		Short: "Score voters by the share of elections they voted in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			voters := res.Voters()
			elecs := efficiency.FromRows(res.Rows)
			if fromVoters {
				elecs = efficiency.FromVoters(voters)
			}
			rpt := efficiency.NewReport(voters, elecs, parties, a.opt.Bar, a.opt.Cutoff)
			if e := raw.WriteJSON(out, rpt); e != nil {
				return e
			}
			w := cmd.OutOrStdout()
			for _, p := range rpt.Parties {
				fmt.Fprintf(w, "%-4s %6.2f  (%d voters)\n", p.Party, p.Average, p.Voters)
			}
			fmt.Fprintf(w, "%d voters ranked\n", len(rpt.Ranking))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "efficiency.json", "output JSON file")
	cmd.Flags().StringSliceVar(&parties, "parties", efficiency.DefaultParties, "affiliations to average")
	cmd.Flags().IntVar(&a.opt.Cutoff, "cutoff", a.opt.Cutoff, "2-digit years at or above this are 19xx")
	cmd.Flags().IntVar(&a.opt.Bar, "bar", a.opt.Bar, "rank voters with more history entries than this")
	cmd.Flags().BoolVar(&fromVoters, "from-voters", false, "build the election list from mapped voters only")
	return cmd
}

func (a *app) audienceCmd() *cobra.Command {
	var out string
	var crit audience.Criteria
	var year int
	cmd := &cobra.Command{
		Use:   "audience <export>",
		Short: "Write selected voters as an audience upload (.csv or .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			res, _, err := a.read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := audience.Build(audience.Select(res.Voters(), crit), year)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() {
				if e := f.Close(); e != nil && err == nil {
					err = e
				}
			}()
			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx":
				err = audience.WriteXLSX(f, rows)
			default:
				err = audience.WriteCSV(f, rows)
			}
			if err != nil {
				return err
			}
			a.logger.Info("wrote audience", "file", out, "rows", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "audience.csv", "output file; .xlsx writes a workbook")
	cmd.Flags().StringSliceVar(&crit.Affiliations, "aff", nil, "affiliations to keep")
	cmd.Flags().StringSliceVar(&crit.Towns, "town", nil, "town codes to keep")
	cmd.Flags().StringSliceVar(&crit.Statuses, "status", []string{"A"}, "voter statuses to keep")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "year ages are counted to")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var table string
	var create bool
	var batch int
	cmd := &cobra.Command{
		Use:   "load <export>",
		Short: "Load the parsed export into ClickHouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if e := a.opt.ValidateClickHouse(); e != nil {
				return e
			}
			ctx := cmd.Context()
			res, _, err := a.read(ctx, args[0])
			if err != nil {
				return err
			}

			chOpt := a.opt.ClickHouse()
			table = chload.Qualify(chOpt.Database, table)
			conn, err := chload.Connect(chOpt)
			if err != nil {
				return err
			}
			defer func() {
				if e := conn.Close(); e != nil && err == nil {
					err = e
				}
			}()
			if create {
				if e := chload.CreateTable(ctx, conn, table); e != nil {
					return e
				}
			}
			id := uuid.New()
			s := time.Now()
			n, err := chload.Load(ctx, conn, table, id, res.Voters(), batch)
			if err != nil {
				return err
			}
			a.logger.Info("loaded", "table", table, "rows", n, "batch_id", id, "time", time.Since(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "destination table; --database applies when no db. prefix is given")
	cmd.Flags().BoolVar(&create, "create", false, "drop and create the table before loading")
	cmd.Flags().IntVar(&batch, "batch", 100000, "rows per insert")
	cmd.Flags().Int64Var(&a.opt.CHMemory, "memory", a.opt.CHMemory, "ClickHouse max_memory_usage")
	cmd.Flags().StringVar(&a.opt.CHHost, "host", a.opt.CHHost, "ClickHouse host (port 9000)")
	cmd.Flags().StringVar(&a.opt.CHUser, "user", a.opt.CHUser, "ClickHouse user")
	cmd.Flags().StringVar(&a.opt.CHPassword, "password", a.opt.CHPassword, "ClickHouse password")
	cmd.Flags().StringVar(&a.opt.CHDatabase, "database", a.opt.CHDatabase, "database for an unqualified --table")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func (a *app) calllistCmd() *cobra.Command {
	var out, town string
	var cities []string
	cmd := &cobra.Command{
		Use:   "calllist <text>",
		Short: "Rebuild voter entries from call list report text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := calllist.NewParser(town, cities)
			if err != nil {
				return err
			}
			p.Logger = a.logger

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if e := f.Close(); e != nil && err == nil {
					err = e
				}
			}()
			res, err := p.Parse(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if e := raw.WriteJSON(out, res); e != nil {
				return e
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %d rejected, %d unknown lines\n",
				len(res.Entries), len(res.Rejects), len(res.Unknown))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "calllist.json", "output JSON file")
	cmd.Flags().StringVar(&town, "town", calllist.DefaultTown, "town code of the report")
	cmd.Flags().StringSliceVar(&cities, "city", calllist.DefaultCities, "post office names in the report")
	return cmd
}
