package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/storage"
)

// Export command flags.
var (
	exportFlagAll    bool
	exportFlagCSV    bool
	exportFlagOutput string
)

// exportCmd writes clips to a backup file.
var exportCmd = &cobra.Command{
	Use:     "export [CLIP]",
	Aliases: []string{"dump"},
	Short:   "Export clips",
	Long: `Export the active clip, a named clip, or with --all every stored clip.
The JSON backup can be read back with import. --csv writes one row per key
instead.

Examples:
  keyline export
  keyline export walk -o walk.json
  keyline export --all -o backup.json
  keyline export walk --csv`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runExport,
}

func init() {
	exportCmd.Flags().BoolVarP(&exportFlagAll, "all", "a", false, "Export every stored clip")
	exportCmd.Flags().BoolVar(&exportFlagCSV, "csv", false, "Write keys as CSV")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var docs []*model.ClipDoc
	switch {
	case exportFlagAll:
		all, err := ctx.Clips.List()
		if err != nil {
			return err
		}
		docs = all
	default:
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		doc, err := ctx.ResolveClip(name)
		if err != nil {
			return err
		}
		docs = []*model.ClipDoc{doc}
	}

	active := ""
	if a, err := ctx.Active.Get(); err == nil && a.IsSet() {
		active = a.ClipName
	}

	var (
		data []byte
		err  error
	)
	if exportFlagCSV {
		data, err = exportCSV(docs)
	} else {
		data, err = json.MarshalIndent(model.NewBackup(docs, active), "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	if exportFlagOutput == "" {
		_, err := ctx.Formatter.Writer.Write(data)
		return err
	}
	if err := storage.SafeWrite(exportFlagOutput, data, 0o644); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintResult("export", len(docs), exportFlagOutput)
	}
	ctx.CLIFormatter().Success("Exported " + strconv.Itoa(len(docs)) + " clip(s) to " + exportFlagOutput)
	return nil
}

// exportCSV flattens docs into clip,target,channel,time,value rows. Events
// use the event name as channel and the priority as value.
func exportCSV(docs []*model.ClipDoc) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"clip", "target", "channel", "time", "value", "in_tangent", "out_tangent"}); err != nil {
		return nil, err
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, d := range docs {
		for _, b := range d.Bones {
			channels := make([]string, 0, len(b.Main))
			for ch := range b.Main {
				channels = append(channels, ch)
			}
			slices.Sort(channels)
			for _, ch := range channels {
				for _, k := range b.Main[ch] {
					if err := w.Write([]string{d.Name, b.Name, ch, num(k.Time), num(k.Value), num(k.InTangent), num(k.OutTangent)}); err != nil {
						return nil, err
					}
				}
			}
		}
		for _, p := range d.Properties {
			for _, k := range p.Main {
				if err := w.Write([]string{d.Name, p.Path, "value", num(k.Time), num(k.Value), num(k.InTangent), num(k.OutTangent)}); err != nil {
					return nil, err
				}
			}
		}
		for _, ev := range d.Events {
			if err := w.Write([]string{d.Name, "events", ev.Name, num(ev.Time), strconv.Itoa(ev.Priority), "", ""}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
