package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/housing-dashboard/internal/feature"
	"github.com/sells-group/housing-dashboard/internal/render"
	"github.com/sells-group/housing-dashboard/internal/server"
)

var replayStrict bool

// replayScript is a scripted session.
type replayScript struct {
	Events []server.EventRequest `yaml:"events"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Drive a headless session from a scripted event list",
	Long:  "Applies each event of the script to a fresh session and prints the final snapshot as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		script, err := readReplayScript(args[0])
		if err != nil {
			return err
		}

		store, err := loadStore(ctx, cfg, "load")
		if err != nil {
			return err
		}

		snap, err := replay(store, serverOptions(cfg), script, replayStrict)
		if err != nil {
			return err
		}
		return writeSnapshot(os.Stdout, snap)
	},
}

func init() {
	replayCmd.Flags().BoolVar(&replayStrict, "strict", false, "stop at the first rejected event")
	rootCmd.AddCommand(replayCmd)
}

func readReplayScript(path string) (*replayScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "replay: read %s", path)
	}
	var script replayScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, eris.Wrapf(err, "replay: parse %s", path)
	}
	return &script, nil
}

// replay applies script to a new session. Rejected events are logged and
// skipped unless strict.
func replay(store *feature.Store, opts server.Options, script *replayScript, strict bool) (render.Snapshot, error) {
	sess := server.NewSession("replay", store, opts.Viewport, opts.Layout)
	for i, req := range script.Events {
		if err := sess.Apply(req); err != nil {
			if strict {
				return render.Snapshot{}, eris.Wrapf(err, "replay: event %d (%s)", i, req.Kind)
			}
			zap.L().Warn("replay: event rejected",
				zap.Int("index", i),
				zap.String("kind", req.Kind),
				zap.Error(err),
			)
		}
	}
	return sess.Snapshot(), nil
}

func writeSnapshot(out io.Writer, snap render.Snapshot) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return eris.Wrap(err, "replay: encode snapshot")
	}
	return nil
}
