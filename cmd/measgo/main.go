// Command measgo captures measurement records from a serial device or
// analyzes a previously exported session file.
//
// Live capture:
//
//	measgo --schema "temp:number,status:string" --port /dev/ttyUSB0
//
// While capturing, single-key commands on stdin control the session:
// s archives the session log, r archives the raw frame dump, v prints a
// summary table, q stops the capture. Other keys are ignored.
//
// File analysis:
//
//	measgo session.xml
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/measgo"
	"github.com/hupe1980/measgo/archive"
	"github.com/hupe1980/measgo/link"
	"github.com/hupe1980/measgo/matrix"
	"github.com/hupe1980/measgo/schema"
)

func main() {
	app := &cli.App{
		Name:      "measgo",
		Usage:     "capture and analyze measurement records",
		ArgsUsage: "[session file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "schema",
				Usage: "session schema, e.g. \"temp:number,status:string\"",
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "serial port of the measurement device",
			},
			&cli.IntFlag{
				Name:  "baud",
				Usage: "serial line rate",
				Value: link.DefaultSerialSourceOptions.Baud,
			},
			&cli.StringFlag{
				Name:  "framing",
				Usage: "frame format: line or marker",
				Value: "line",
			},
			&cli.StringFlag{
				Name:  "separator",
				Usage: "field separator in text frames",
				Value: ",",
			},
			&cli.StringFlag{
				Name:  "archive",
				Usage: "directory for archived session logs and raw dumps",
				Value: "./captures",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "max sustained records per second, 0 for unlimited",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return analyze(c, c.Args().Get(0))
			}
			return capture(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "measgo:", err)
		os.Exit(1)
	}
}

func logLevel(c *cli.Context) slog.Level {
	if c.Bool("verbose") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// analyze loads an exported session and prints its summary.
func analyze(c *cli.Context, path string) error {
	eng, err := measgo.LoadFile(path, measgo.WithLogLevel(logLevel(c)))
	if err != nil {
		return err
	}

	fmt.Printf("session %s: %d records, schema %s\n", eng.Meta().ID, eng.Len(), eng.Schema())
	return visualize(eng)
}

// capture runs a live session against a serial device until q is pressed.
func capture(c *cli.Context) error {
	spec := c.String("schema")
	if spec == "" {
		return errors.New("live capture requires --schema")
	}
	port := c.String("port")
	if port == "" {
		return errors.New("live capture requires --port")
	}

	s, err := schema.Parse(spec)
	if err != nil {
		return err
	}

	framing, ok := link.FramingByName(c.String("framing"))
	if !ok {
		return fmt.Errorf("unknown framing %q", c.String("framing"))
	}

	store, err := archive.NewDirStore(c.String("archive"))
	if err != nil {
		return err
	}

	opts := []measgo.Option{
		measgo.WithSeparator(c.String("separator")),
		measgo.WithArchive(store),
		measgo.WithLogLevel(logLevel(c)),
	}
	if r := c.Float64("rate"); r > 0 {
		opts = append(opts, measgo.WithIngestRate(rate.Limit(r), 1))
	}

	eng, err := measgo.New(s, opts...)
	if err != nil {
		return err
	}

	src, err := link.NewSerialSource(port, func(o *link.SerialSourceOptions) {
		o.Baud = c.Int("baud")
		o.Framing = framing
	})
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := eng.Run(ctx, src)
		// A quit closes the port under the reader; that is not a failure.
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	fmt.Println("capturing: s=save text log, r=save session xml, v=summary, q=quit")
	commands(ctx, cancel, eng)
	_ = src.Close()

	if err := g.Wait(); err != nil {
		return err
	}

	stats := eng.Stats()
	fmt.Printf("done: %d admitted, %d rejected, %d malformed\n",
		stats.Admitted, stats.Rejected, stats.Malformed)
	return nil
}

// commands reads single-key commands from stdin until q or cancellation.
func commands(ctx context.Context, cancel context.CancelFunc, eng *measgo.Engine) {
	in := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}

		r, _, err := in.ReadRune()
		if err != nil {
			cancel()
			return
		}

		switch r {
		case 'q':
			cancel()
			return
		case 's':
			if name, err := eng.SaveLog(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "save log:", err)
			} else {
				fmt.Println("saved", name)
			}
		case 'r':
			if name, err := eng.SaveRaw(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "save raw:", err)
			} else {
				fmt.Println("saved", name)
			}
		case 'v':
			if err := visualize(eng); err != nil {
				fmt.Fprintln(os.Stderr, "summary:", err)
			}
		}
	}
}

// summaryReductions are the aggregates shown per numeric field.
var summaryReductions = []matrix.Reduction{
	matrix.Mean, matrix.StdDev, matrix.Min, matrix.Max, matrix.Sum,
}

// visualize prints one row per reduction over all numeric fields.
func visualize(eng *measgo.Engine) error {
	m, err := eng.Project()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(append([]string{"reduction"}, m.Fields()...))

	for _, r := range summaryReductions {
		v, err := eng.Summarize(r)
		if err != nil {
			return err
		}

		row := []string{r.String()}
		for _, x := range v.Values() {
			row = append(row, strconv.FormatFloat(x, 'g', 6, 64))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}
