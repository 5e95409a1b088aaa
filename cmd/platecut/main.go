// PlateCut — Kickplate Cutting Optimizer
//
// Packs rectangular kickplate orders onto stock sheets, minimising the
// number of sheets cut. Orders come in as ProMaster CSV/Excel exports,
// plain cut-list files or JSON pack requests; results go out as JSON,
// cutting-diagram PDFs, piece labels, saw-ready cut lists and
// utilisation reports.
//
// Build:
//   go build -o platecut ./cmd/platecut
//
// Usage:
//   platecut pack -in order.csv -pdf diagrams.pdf -summary
//   platecut pack -piece 800x300:SSS:5 -piece 600x150:SSS:2
//   platecut pack -template "Standard Door Pack" -save-job "Ward 3 doors"
//   platecut compare -in order.csv -kerfs 0,3,5
//   platecut jobs list
//   platecut backup export backup.json
//   platecut serve -addr :8080
//   platecut presets
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/PlateCut/internal/audit"
	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/export"
	"github.com/piwi3910/PlateCut/internal/importer"
	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
	"github.com/piwi3910/PlateCut/internal/server"
)

const version = "1.0.0"

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "pack":
		runPack(os.Args[2:])
	case "compare":
		runCompare(os.Args[2:])
	case "jobs":
		runJobs(os.Args[2:])
	case "backup":
		runBackup(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "presets":
		runPresets(os.Args[2:])
	case "version":
		fmt.Printf("platecut %s\n", version)
	case "-h", "--help", "help":
		usage()
	default:
		log.Printf("unknown command %q", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `PlateCut — Kickplate Cutting Optimizer

Commands:
  pack      Pack an order onto stock sheets
  compare   Pack the same order under several what-if scenarios
  jobs      List, show or delete saved jobs
  backup    Export or import all settings, presets and templates
  serve     Run the HTTP API
  presets   List the saved sheet presets
  version   Print the version

Run 'platecut <command> -h' for command flags.`)
}

// pieceFlag collects repeated -piece WxH:MAT[:QTY] arguments.
type pieceFlag []model.PieceSpec

func (p *pieceFlag) String() string {
	parts := make([]string, len(*p))
	for i, spec := range *p {
		parts[i] = fmt.Sprintf("%dx%d:%s:%d", spec.Width, spec.Height, spec.Material, spec.Quantity)
	}
	return strings.Join(parts, ",")
}

func (p *pieceFlag) Set(value string) error {
	fields := strings.Split(value, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return fmt.Errorf("want WxH:MATERIAL[:QTY], got %q", value)
	}

	dims := strings.SplitN(strings.ToLower(fields[0]), "x", 2)
	if len(dims) != 2 {
		return fmt.Errorf("want WxH dimensions, got %q", fields[0])
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return fmt.Errorf("bad width %q", dims[0])
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return fmt.Errorf("bad height %q", dims[1])
	}

	material := strings.ToUpper(strings.TrimSpace(fields[1]))
	quantity := 1
	if len(fields) == 3 {
		quantity, err = strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad quantity %q", fields[2])
		}
	}

	*p = append(*p, model.PieceSpec{
		PartCode: model.MakePartCode(width, height, material),
		Width:    width,
		Height:   height,
		Quantity: quantity,
		Material: material,
	})
	return nil
}

// orderFlags are the input and sheet-settings flags shared by pack and
// compare. Defaults come from the saved app config so the CLI picks up
// the same stock settings as every other run.
type orderFlags struct {
	input    string
	template string
	pieces   pieceFlag
	stock    string
	kerf     int
	grain    string
	material string
}

func (of *orderFlags) register(fs *flag.FlagSet, cfg model.AppConfig) {
	fs.StringVar(&of.input, "in", "", "order file (.csv, .xlsx) or pack request (.json)")
	fs.StringVar(&of.template, "template", "", "saved or builtin size template name")
	fs.Var(&of.pieces, "piece", "piece as WxH:MATERIAL[:QTY], repeatable")
	fs.StringVar(&of.stock, "stock", fmt.Sprintf("%dx%d", cfg.DefaultStockWidth, cfg.DefaultStockHeight), "stock sheet size as WxH in mm")
	fs.IntVar(&of.kerf, "kerf", cfg.DefaultKerf, "blade width in mm")
	fs.StringVar(&of.grain, "grain", cfg.DefaultGrain.String(), "grain direction: none, horizontal or vertical")
	fs.StringVar(&of.material, "material", cfg.DefaultMaterial, "default material for lines without one")
}

// buildRequest assembles the pack request from whichever input the user
// gave. Order lines are returned alongside so pack can cost the order;
// they are nil for -piece and JSON input.
func (of *orderFlags) buildRequest() (model.PackRequest, []model.OrderLine, error) {
	grain, err := model.ParseGrain(of.grain)
	if err != nil {
		return model.PackRequest{}, nil, err
	}

	stockW, stockH, err := parseStock(of.stock)
	if err != nil {
		return model.PackRequest{}, nil, err
	}

	cfg := model.SheetConfig{
		StockWidth:  stockW,
		StockHeight: stockH,
		Kerf:        of.kerf,
		Grain:       grain,
	}

	if of.input == "" && of.template != "" {
		tmpl, err := findTemplate(of.template)
		if err != nil {
			return model.PackRequest{}, nil, err
		}
		return tmpl.Request(cfg), nil, nil
	}

	if of.input == "" {
		if len(of.pieces) == 0 {
			return model.PackRequest{}, nil, fmt.Errorf("no input: give -in, -template or at least one -piece")
		}
		return model.PackRequest{
			Pieces:      of.pieces,
			StockWidth:  cfg.StockWidth,
			StockHeight: cfg.StockHeight,
			Kerf:        cfg.Kerf,
			Grain:       cfg.Grain,
		}, nil, nil
	}

	if strings.EqualFold(strings.TrimPrefix(ext(of.input), "."), "json") {
		data, err := os.ReadFile(of.input)
		if err != nil {
			return model.PackRequest{}, nil, err
		}
		var req model.PackRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return model.PackRequest{}, nil, fmt.Errorf("parsing %s: %w", of.input, err)
		}
		return req, nil, nil
	}

	imported := importer.ImportFile(of.input, of.material)
	for _, warn := range imported.Warnings {
		log.Printf("warning: %s", warn)
	}
	if len(imported.Errors) > 0 {
		for _, e := range imported.Errors {
			log.Printf("error: %s", e)
		}
		return model.PackRequest{}, nil, fmt.Errorf("%s: %d rows failed to import", of.input, len(imported.Errors))
	}
	if len(imported.Lines) == 0 {
		return model.PackRequest{}, nil, fmt.Errorf("%s: no kickplate lines found", of.input)
	}

	return model.BuildRequest(imported.Lines, cfg), imported.Lines, nil
}

func parseStock(s string) (int, int, error) {
	dims := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("want stock as WxH, got %q", s)
	}
	w, err := strconv.Atoi(dims[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad stock width %q", dims[0])
	}
	h, err := strconv.Atoi(dims[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad stock height %q", dims[1])
	}
	return w, h, nil
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

// findTemplate resolves a template name: the saved store first, then
// the builtin packs.
func findTemplate(name string) (model.SizeTemplate, error) {
	store, err := project.LoadDefaultTemplates()
	if err != nil {
		store = model.NewTemplateStore()
	}
	return lookupTemplate(store, model.BuiltinTemplates(), name)
}

func lookupTemplate(store model.TemplateStore, builtins []model.SizeTemplate, name string) (model.SizeTemplate, error) {
	if t := store.FindByName(name); t != nil {
		return *t, nil
	}
	for _, t := range builtins {
		if t.Name == name {
			return t, nil
		}
	}
	names := store.Names()
	for _, t := range builtins {
		names = append(names, t.Name)
	}
	return model.SizeTemplate{}, fmt.Errorf("no template named %q (available: %s)", name, strings.Join(names, ", "))
}

func runPack(args []string) {
	appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	var of orderFlags
	of.register(fs, appCfg)
	output := fs.String("o", "", "write the result JSON to this file instead of stdout")
	pdfPath := fs.String("pdf", "", "write cutting diagrams PDF to this file")
	labelsPath := fs.String("labels", "", "write piece labels PDF to this file")
	cutlistPath := fs.String("cutlist", "", "write the saw cut list CSV to this file")
	reportPath := fs.String("report", "", "write the utilization report HTML to this file")
	verify := fs.Bool("verify", false, "audit the result for placement violations")
	summary := fs.Bool("summary", false, "print a run summary to stderr")
	estimate := fs.Bool("estimate", false, "print a sheet purchase estimate to stderr")
	jobName := fs.String("save-job", "", "save the request and result as a named job")
	fs.Parse(args)

	req, lines, err := of.buildRequest()
	if err != nil {
		log.Fatal(err)
	}

	result, err := engine.Pack(req)
	if err != nil {
		log.Fatal(err)
	}

	if *verify {
		violations := audit.Verify(req.BuildPieces(), req.Config(), result)
		for _, v := range violations {
			log.Printf("violation [%s]: %s", v.Rule, v.Detail)
		}
		if len(violations) > 0 {
			log.Fatalf("audit failed: %d violations", len(violations))
		}
	}

	if err := writeResultJSON(*output, result); err != nil {
		log.Fatal(err)
	}

	renderArtifacts(req, result, *pdfPath, *labelsPath, *cutlistPath, *reportPath)

	if *summary {
		printSummary(req, lines, result, appCfg)
	}

	if *estimate {
		printEstimate(req, appCfg)
	}

	if *jobName != "" {
		dir, err := project.DefaultJobsDir()
		if err != nil {
			log.Fatalf("saving job: %v", err)
		}
		job := project.NewSavedJob(*jobName, req, &result)
		path, err := project.SaveJob(dir, job)
		if err != nil {
			log.Fatalf("saving job: %v", err)
		}
		appCfg.AddRecentJob(path)
		if err := project.SaveAppConfig(project.DefaultConfigPath(), appCfg); err != nil {
			log.Printf("warning: updating recent jobs: %v", err)
		}
		log.Printf("saved job %s to %s", job.ID, path)
	}
}

func writeResultJSON(path string, result model.PackResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func renderArtifacts(req model.PackRequest, result model.PackResult, pdfPath, labelsPath, cutlistPath, reportPath string) {
	write := func(path, what string, render func(f *os.File) error) {
		if path == "" {
			return
		}
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("writing %s: %v", what, err)
		}
		if err := render(f); err != nil {
			f.Close()
			log.Fatalf("writing %s: %v", what, err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("writing %s: %v", what, err)
		}
		log.Printf("wrote %s to %s", what, path)
	}

	write(pdfPath, "cutting diagrams", func(f *os.File) error {
		return export.WritePDF(f, result, req.Config())
	})
	write(labelsPath, "piece labels", func(f *os.File) error {
		return export.WriteLabels(f, result)
	})
	write(cutlistPath, "cut list", func(f *os.File) error {
		return export.WriteCutlist(f, result)
	})
	write(reportPath, "utilization report", func(f *os.File) error {
		return export.WriteReport(f, result)
	})
}

// printSummary writes the shop-floor numbers to stderr: sheet usage,
// reusable offcuts, polishing and film estimates, and the order margin
// when money fields were imported.
func printSummary(req model.PackRequest, lines []model.OrderLine, result model.PackResult, appCfg model.AppConfig) {
	cfg := req.Config()

	fmt.Fprintf(os.Stderr, "\nSheets used:        %d (%dx%dmm, kerf %dmm, grain %s)\n",
		len(result.Sheets), cfg.StockWidth, cfg.StockHeight, cfg.Kerf, cfg.Grain)
	fmt.Fprintf(os.Stderr, "Pieces placed:      %d\n", result.PlacedCount())
	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "Pieces skipped:     %d\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Fprintf(os.Stderr, "  %s (%dx%dmm): %s\n", s.PartCode, s.Width, s.Height, s.Reason)
		}
	}
	fmt.Fprintf(os.Stderr, "Overall efficiency: %.1f%%\n", result.OverallEfficiency*100)

	offcuts := model.DetectAllOffcuts(result, cfg)
	if len(offcuts) > 0 {
		fmt.Fprintf(os.Stderr, "Reusable offcuts:   %d (%.2f m2)\n",
			len(offcuts), float64(model.TotalOffcutArea(offcuts))/1e6)
	}

	edging := model.EstimateEdgeFinish(result, 10)
	fmt.Fprintf(os.Stderr, "Edge to polish:     %.1f m (incl. 10%% waste)\n", edging.TotalWithWasteM)
	fmt.Fprintf(os.Stderr, "Protective film:    %.2f m2\n", edging.FilmAreaM2)

	if len(lines) > 0 {
		costing := model.CostOrder(lines, result, appCfg.SheetCost)
		fmt.Fprintf(os.Stderr, "Revenue:            %s\n", costing.TotalRevenue.StringFixed(2))
		fmt.Fprintf(os.Stderr, "Material cost:      %s\n", costing.TotalCost.StringFixed(2))
		fmt.Fprintf(os.Stderr, "Sheet spend:        %s\n", costing.SheetSpend.StringFixed(2))
		fmt.Fprintf(os.Stderr, "Margin:             %s\n", costing.Margin.StringFixed(2))
	}
}

// printEstimate writes a pre-cut sheet purchasing estimate to stderr,
// priced from the saved default sheet cost.
func printEstimate(req model.PackRequest, appCfg model.AppConfig) {
	est := model.EstimatePurchase(req.BuildPieces(), req.Config(), 15, appCfg.SheetCost)
	fmt.Fprintf(os.Stderr, "\nPurchase estimate:  %d sheets (min %d, exact %.2f, 15%% waste)\n",
		est.SheetsWithWaste, est.SheetsNeededMin, est.SheetsNeededExact)
	fmt.Fprintf(os.Stderr, "Estimated spend:    %s\n", est.EstimatedSpend.StringFixed(2))
}

func runCompare(args []string) {
	appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	var of orderFlags
	of.register(fs, appCfg)
	kerfs := fs.String("kerfs", "", "comma-separated kerf values to sweep, e.g. 0,3,5")
	fs.Parse(args)

	req, _, err := of.buildRequest()
	if err != nil {
		log.Fatal(err)
	}

	pieces := req.BuildPieces()
	base := req.Config()

	var results []engine.ScenarioResult
	if *kerfs != "" {
		values, err := parseKerfs(*kerfs)
		if err != nil {
			log.Fatal(err)
		}
		results, err = engine.KerfSweep(pieces, base, values)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		results, err = engine.CompareScenarios(engine.BuildDefaultScenarios(base), pieces)
		if err != nil {
			log.Fatal(err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSHEETS\tPLACED\tSKIPPED\tWASTE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\n",
			r.Scenario.Name, r.SheetsUsed, r.PlacedCount, r.SkippedCount, r.WasteRatio*100)
	}
	w.Flush()
}

func parseKerfs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad kerf value %q", p)
		}
		values = append(values, v)
	}
	return values, nil
}

func runJobs(args []string) {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print jobs as JSON")
	fs.Parse(args)

	dir, err := project.DefaultJobsDir()
	if err != nil {
		log.Fatalf("locating jobs directory: %v", err)
	}

	action := "list"
	rest := fs.Args()
	if len(rest) > 0 {
		action = rest[0]
	}

	switch action {
	case "list":
		jobs, err := project.ListJobs(dir)
		if err != nil {
			log.Fatalf("listing jobs: %v", err)
		}
		if *asJSON {
			data, err := json.MarshalIndent(jobs, "", "  ")
			if err != nil {
				log.Fatal(err)
			}
			os.Stdout.Write(append(data, '\n'))
			return
		}
		if len(jobs) == 0 {
			fmt.Println("no saved jobs")
			return
		}
		printJobs(os.Stdout, jobs)
	case "show":
		if len(rest) < 2 {
			log.Fatal("usage: platecut jobs show <id>")
		}
		job, err := project.LoadJob(filepath.Join(dir, rest[1]+".json"))
		if err != nil {
			log.Fatalf("loading job %s: %v", rest[1], err)
		}
		data, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(append(data, '\n'))
	case "delete":
		if len(rest) < 2 {
			log.Fatal("usage: platecut jobs delete <id>")
		}
		if err := project.DeleteJob(dir, rest[1]); err != nil {
			log.Fatalf("deleting job %s: %v", rest[1], err)
		}
		log.Printf("deleted job %s", rest[1])
	default:
		log.Fatalf("unknown jobs action %q (want list, show or delete)", action)
	}
}

func printJobs(w io.Writer, jobs []project.SavedJob) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED\tLINES\tSHEETS")
	for _, job := range jobs {
		sheets := "-"
		if job.Result != nil {
			sheets = strconv.Itoa(len(job.Result.Sheets))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			job.ID, job.Name, job.UpdatedAt, len(job.Request.Pieces), sheets)
	}
	tw.Flush()
}

func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 2 {
		log.Fatal("usage: platecut backup export|import <file>")
	}
	path := rest[1]

	switch rest[0] {
	case "export":
		cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		inv, _, err := project.LoadOrCreateInventory()
		if err != nil {
			log.Fatalf("loading inventory: %v", err)
		}
		templates, err := project.LoadDefaultTemplates()
		if err != nil {
			log.Fatalf("loading templates: %v", err)
		}
		if err := project.ExportAllData(path, cfg, inv, templates); err != nil {
			log.Fatalf("exporting backup: %v", err)
		}
		log.Printf("exported settings, presets and templates to %s", path)
	case "import":
		backup, err := project.ImportAllData(path)
		if err != nil {
			log.Fatalf("importing backup: %v", err)
		}
		if err := project.SaveAppConfig(project.DefaultConfigPath(), backup.Config); err != nil {
			log.Fatalf("applying config: %v", err)
		}
		invPath, err := project.DefaultInventoryPath()
		if err != nil {
			log.Fatalf("applying presets: %v", err)
		}
		if err := project.SaveInventory(invPath, backup.Inventory); err != nil {
			log.Fatalf("applying presets: %v", err)
		}
		if err := project.SaveDefaultTemplates(backup.Templates); err != nil {
			log.Fatalf("applying templates: %v", err)
		}
		log.Printf("imported backup from %s (created %s)", path, backup.CreatedAt)
	default:
		log.Fatalf("unknown backup action %q (want export or import)", rest[0])
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	fs.Parse(args)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      server.New(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("platecut %s listening on %s", version, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func runPresets(args []string) {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print the inventory as JSON")
	fs.Parse(args)

	inv, path, err := project.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("loading inventory: %v", err)
	}

	if *asJSON {
		data, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		os.Stdout.Write(append(data, '\n'))
		return
	}

	fmt.Printf("Sheet presets (%s):\n\n", path)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMATERIAL\tCOST")
	for _, sp := range inv.Sheets {
		fmt.Fprintf(w, "%s\t%dx%dmm\t%s\t%s\n",
			sp.Name, sp.Width, sp.Height, sp.Material, sp.Cost.StringFixed(2))
	}
	w.Flush()
}
