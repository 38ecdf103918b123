package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/groblegark/jiragraph/internal/graph"
	"github.com/groblegark/jiragraph/internal/model"
	"github.com/groblegark/jiragraph/internal/publish"
	"github.com/groblegark/jiragraph/internal/render"
	"github.com/groblegark/jiragraph/internal/ui"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <issue-key>...",
	Short: "Build the dependency graph reachable from the given issues",
	Long: `Build the dependency graph reachable from the given issue keys (or a JQL
query) by following subtasks, epic children and issue links, then render it
as GraphViz text, a .gv file, and/or a PNG image.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		flags := cmd.Flags()

		jql, _ := flags.GetString("jql")
		local, _ := flags.GetBool("local")
		gvOnly, _ := flags.GetBool("gv-only")
		pngOnly, _ := flags.GetBool("png-only")
		fileName, _ := flags.GetString("file")
		outDir, _ := flags.GetString("out-dir")
		nodeShape, _ := flags.GetString("node-shape")
		wordWrap, _ := flags.GetBool("word-wrap")
		chartURL, _ := flags.GetString("chart-url")
		upload, _ := flags.GetString("upload")
		s3Region, _ := flags.GetString("s3-region")
		s3Endpoint, _ := flags.GetString("s3-endpoint")

		filter := filterFromFlags(cmd)

		seeds := append([]string(nil), args...)
		if jql != "" {
			keys, err := tracker.SearchKeys(ctx, jql)
			if err != nil {
				return fmt.Errorf("resolving JQL seeds: %w", err)
			}
			seeds = append(seeds, keys...)
		}
		if len(seeds) == 0 {
			return fmt.Errorf("no seed issues: pass issue keys or --jql")
		}

		var spinner *ui.Spinner
		if ui.IsTerminal() {
			spinner = ui.NewSpinner(os.Stderr, "Fetching issues")
			spinner.Start()
		}
		g, warnings, err := graph.NewBuilder(tracker, filter).Build(ctx, seeds)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, ui.RenderWarn(fmt.Sprintf("warning: %s: %v", w.Key, w.Err)))
		}

		if jsonOutput {
			out := struct {
				Nodes []*model.Issue `json:"nodes"`
				Edges []model.Edge   `json:"edges"`
			}{Nodes: g.Nodes(), Edges: g.Edges()}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		dot := render.DOT(g, render.Options{
			NodeShape:    nodeShape,
			WordWrap:     wordWrap,
			MergeRelates: filter.MergeRelates,
			BrowseURL:    tracker.BrowseURL,
		})

		if local {
			fmt.Println(dot)
			return nil
		}

		if fileName == "" {
			fileName = strings.Join(seeds, "+")
		}

		type artifact struct {
			path        string
			contentType string
			data        []byte
		}
		var artifacts []artifact

		if !pngOnly {
			path := filepath.Join(outDir, "gv", fileName+".gv")
			artifacts = append(artifacts, artifact{path, "text/vnd.graphviz", []byte(dot)})
		}
		if !gvOnly {
			png, err := render.NewChartRenderer(chartURL).Render(ctx, dot)
			if err != nil {
				return fmt.Errorf("rendering PNG: %w", err)
			}
			path := filepath.Join(outDir, "png", fileName+".png")
			artifacts = append(artifacts, artifact{path, "image/png", png})
		}

		fmt.Println(ui.RenderMuted("Graph(s) written to:"))
		for _, a := range artifacts {
			if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			if err := os.WriteFile(a.path, a.data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", a.path, err)
			}
			fmt.Printf(" - %s\n", ui.RenderAccent(a.path))
		}

		if upload != "" {
			bucket, prefix, err := publish.ParseS3URL(upload)
			if err != nil {
				return err
			}
			pub, err := publish.NewS3Publisher(ctx, bucket, s3Region, s3Endpoint)
			if err != nil {
				return err
			}
			for _, a := range artifacts {
				key := filepath.Base(a.path)
				if prefix != "" {
					key = prefix + "/" + key
				}
				if err := pub.Put(ctx, key, a.contentType, a.data); err != nil {
					return fmt.Errorf("uploading %s: %w", key, err)
				}
				fmt.Printf(" - %s\n", ui.RenderAccent("s3://"+bucket+"/"+key))
			}
		}
		return nil
	},
}

// filterFromFlags assembles the traversal filter from command flags.
func filterFromFlags(cmd *cobra.Command) model.Filter {
	flags := cmd.Flags()

	excludeLinks, _ := flags.GetStringArray("exclude-link")
	excludeIssues, _ := flags.GetStringArray("exclude-issue")
	includePrefixes, _ := flags.GetStringArray("include-prefix")
	ignoreEpics, _ := flags.GetBool("ignore-epics")
	ignoreSubtasks, _ := flags.GetBool("ignore-subtasks")
	ignoreClosed, _ := flags.GetBool("ignore-closed")
	noMergeRelates, _ := flags.GetBool("no-merge-relates")
	walkDirs, _ := flags.GetStringSlice("direction")
	showDirs, _ := flags.GetStringSlice("show-direction")

	return model.Filter{
		ExcludedLinkNames: excludeLinks,
		ExcludedKeys:      excludeIssues,
		IncludedPrefixes:  includePrefixes,
		IgnoreEpics:       ignoreEpics,
		IgnoreSubtasks:    ignoreSubtasks,
		IgnoreClosed:      ignoreClosed,
		MergeRelates:      !noMergeRelates,
		WalkDirections:    toDirections(walkDirs),
		ShowDirections:    toDirections(showDirs),
	}
}

// toDirections converts flag values; "both" (or an empty list) means no
// restriction. Unknown values pass through so filter validation can report
// them as a ConfigError before traversal starts.
func toDirections(values []string) []model.Direction {
	var out []model.Direction
	for _, v := range values {
		if strings.EqualFold(v, "both") {
			return nil
		}
		out = append(out, model.Direction(strings.ToLower(v)))
	}
	return out
}

func init() {
	graphCmd.Flags().String("jql", "", "JQL query resolving additional seed issues")
	graphCmd.Flags().StringP("file", "f", "", "base name for output files (default: seed keys joined with +)")
	graphCmd.Flags().String("out-dir", "out", "directory for rendered output")
	graphCmd.Flags().BoolP("local", "l", false, "print GraphViz code to stdout instead of writing files")
	graphCmd.Flags().Bool("gv-only", false, "write only the GraphViz file")
	graphCmd.Flags().Bool("png-only", false, "write only the PNG image")
	graphCmd.Flags().StringP("node-shape", "n", "box", "GraphViz node shape (box, circle, ellipse, ...)")
	graphCmd.Flags().BoolP("word-wrap", "w", false, "word wrap issue summaries instead of truncating them")
	graphCmd.Flags().String("chart-url", render.DefaultChartURL, "chart service endpoint for PNG rendering")
	graphCmd.Flags().StringArrayP("exclude-link", "x", nil, "link type name to exclude (repeatable)")
	graphCmd.Flags().StringArray("exclude-issue", nil, "issue key to exclude (repeatable)")
	graphCmd.Flags().StringArrayP("include-prefix", "i", nil, "project prefix to restrict expansion to (repeatable)")
	graphCmd.Flags().BoolP("ignore-epics", "e", false, "do not follow an epic into its child issues")
	graphCmd.Flags().BoolP("ignore-subtasks", "t", false, "ignore subtask relationships")
	graphCmd.Flags().Bool("ignore-closed", false, "ignore closed issues")
	graphCmd.Flags().Bool("no-merge-relates", false, "do not merge mirrored 'relates to' edges")
	graphCmd.Flags().StringSliceP("direction", "d", nil, "link directions to walk (inward, outward, both)")
	graphCmd.Flags().StringSliceP("show-direction", "s", nil, "link directions to render (inward, outward, both)")
	graphCmd.Flags().String("upload", "", "s3://bucket/prefix destination to upload rendered files to")
	graphCmd.Flags().String("s3-region", "us-east-1", "S3 region for --upload")
	graphCmd.Flags().String("s3-endpoint", "", "custom S3 endpoint for --upload (MinIO and similar)")
}
