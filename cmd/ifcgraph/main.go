package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/buildgraph/ifcgraph/pkg/chainexport"
	"github.com/buildgraph/ifcgraph/pkg/config"
	"github.com/buildgraph/ifcgraph/pkg/extract"
	"github.com/buildgraph/ifcgraph/pkg/logging"
	"github.com/buildgraph/ifcgraph/pkg/metrics"
	"github.com/buildgraph/ifcgraph/pkg/store"
	"github.com/buildgraph/ifcgraph/pkg/validation"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "process":
		err = runProcess(args)
	case "export":
		err = runExport(args)
	case "mintdata":
		err = runMintData(args)
	case "files":
		err = runFiles(args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	usage := `ifcgraph - IFC building graph pipeline

Usage:
  ifcgraph <command> [options]

Available Commands:
  process     Extract an IFC file into the graph store
  export      Export a stored file as chain-ready nodes and edges
  mintdata    Produce validated mint calldata for a stored file
  files       List ingested files
  help        Show this help message

Use "ifcgraph <command> --help" for more information about a command.
`
	fmt.Print(usage)
}

// loadEnvironment builds the shared dependencies for one command run:
// config, logger, metrics and the snapshot-backed store.
func loadEnvironment(configPath string) (*config.Config, logging.Logger, *metrics.Registry, *store.Store, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		cfg = loaded
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.Logging.Level))
	registry := metrics.NewRegistry()

	db, err := store.Open(store.Config{
		DataDir:         cfg.Store.DataDir,
		SnapshotOnClose: true,
	}, logger, registry)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, logger, registry, db, nil
}

func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	modelPath := fs.String("model", "", "Path to a JSON topology model (deterministic engine input)")
	building := fs.String("building", "", "Building name override")
	types := fs.String("types", "", "Comma-separated IFC type filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ifcgraph process [options] <file.ifc>")
	}
	ifcPath := fs.Arg(0)

	req := &validation.ProcessRequest{
		FilePath:     ifcPath,
		BuildingName: *building,
		IncludeTypes: splitTypes(*types),
	}
	if err := validation.ValidateProcessRequest(req); err != nil {
		return err
	}

	cfg, logger, registry, db, err := loadEnvironment(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := loadEngine(*modelPath)
	if err != nil {
		return err
	}

	processing := cfg.Processing
	if len(req.IncludeTypes) > 0 {
		processing.IncludeTypes = req.IncludeTypes
	}

	processor := extract.NewProcessor(engine, logger, registry)
	graph, result, _, err := processor.ProcessFile(ifcPath, processing)
	if err != nil {
		return err
	}

	fileID, err := db.StoreGraph(graph, "", req.BuildingName)
	if err != nil {
		return err
	}

	fmt.Printf("Processed %s via %s\n", ifcPath, graph.ProcessingMethod)
	fmt.Printf("File ID:   %s\n", fileID)
	fmt.Printf("Building:  %s (%s)\n", graph.BuildingName, graph.BuildingID)
	fmt.Printf("Vertices:  %d\n", graph.VertexCount)
	fmt.Printf("Edges:     %d\n", graph.EdgeCount)
	for ifcType, count := range graph.IFCTypeCounts {
		fmt.Printf("  %-24s %d\n", ifcType, count)
	}
	if result.ErrorDetails != "" {
		fmt.Printf("Fallback trail: %s\n", result.ErrorDetails)
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	fileID := fs.String("file-id", "", "File id to export")
	types := fs.String("types", "", "Comma-separated IFC type filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := &validation.ExportRequest{FileID: *fileID, IncludeTypes: splitTypes(*types)}
	if err := validation.ValidateExportRequest(req); err != nil {
		return err
	}

	_, logger, registry, db, err := loadEnvironment(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := chainexport.NewExporter(db, logger, registry)
	nodes, edges, err := exporter.ExportBuilding(req.FileID, req.IncludeTypes)
	if err != nil {
		return err
	}

	valid, problems := chainexport.ValidateExport(nodes, edges)
	out := struct {
		Nodes    []chainexport.GraphNode `json:"nodes"`
		Edges    []chainexport.GraphEdge `json:"edges"`
		Valid    bool                    `json:"valid"`
		Problems []string                `json:"problems,omitempty"`
	}{nodes, edges, valid, problems}

	return printJSON(out)
}

func runMintData(args []string) error {
	fs := flag.NewFlagSet("mintdata", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	fileID := fs.String("file-id", "", "File id to mint")
	project := fs.String("project", "", "Project name for the mint")
	types := fs.String("types", "", "Comma-separated IFC type filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, registry, db, err := loadEnvironment(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()

	req := &validation.MintRequest{
		FileID:          *fileID,
		ProjectName:     *project,
		ContractAddress: cfg.Export.ContractAddress,
		ChainID:         cfg.Export.ChainID,
	}
	if err := validation.ValidateMintRequest(req); err != nil {
		return err
	}

	exporter := chainexport.NewExporter(db, logger, registry)
	calldata, err := exporter.PrepareBatchMintData(req.FileID, req.ProjectName, splitTypes(*types))
	if err != nil {
		return err
	}
	return printJSON(calldata)
}

func runFiles(args []string) error {
	fs := flag.NewFlagSet("files", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _, _, db, err := loadEnvironment(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()

	files, err := db.Files()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No files ingested.")
		return nil
	}
	for _, f := range files {
		stats, err := db.FileStatistics(f.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-30s %-24s %4d vertices %4d edges\n",
			f.ID, f.Filename, f.BuildingName, stats.VertexCount, stats.EdgeCount)
	}
	return nil
}

// modelFile is the JSON shape of a deterministic engine model.
type modelFile struct {
	Vertices []extract.MemoryVertex `json:"vertices"`
	Edges    []extract.MemoryEdge   `json:"edges"`
}

// loadEngine builds the topology engine for a run. Extraction geometry
// comes from an external kernel in production; the CLI drives the pipeline
// with a deterministic model instead.
func loadEngine(modelPath string) (extract.TopologyEngine, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("a -model file is required")
	}
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", modelPath, err)
	}
	var m modelFile
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", modelPath, err)
	}
	return &extract.MemoryEngine{Model: m.Vertices, Edges: m.Edges}, nil
}

func splitTypes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
