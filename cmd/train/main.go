// Command train fits the ensemble once and prints the cross-validation
// table and a sample prediction. It exercises the same trainer the API
// server uses, without starting any HTTP or storage components.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/config"
	"github.com/vartificial/match-predictor/internal/corpus"
	"github.com/vartificial/match-predictor/internal/logic"
	"github.com/vartificial/match-predictor/internal/models"
)

func main() {
	corpusPath := flag.String("corpus", "", "CSV corpus to train on (default: embedded reference set)")
	modelConfig := flag.String("config", "", "YAML hyperparameter file")
	timeout := flag.Duration("timeout", logic.DefaultTrainingTimeout, "training deadline")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(*corpusPath, *modelConfig, *timeout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}
}

func run(corpusPath, modelConfig string, timeout time.Duration, logger *zap.Logger) error {
	cfg, err := config.LoadEnsembleConfig(modelConfig)
	if err != nil {
		return err
	}

	var src corpus.Source = corpus.EmbeddedSource{}
	if corpusPath != "" {
		src = corpus.FileSource{Path: corpusPath}
	}

	ctx := context.Background()
	examples, err := src.Load(ctx)
	if err != nil {
		return err
	}

	state, err := logic.NewTrainer(cfg, timeout, logger).Fit(ctx, examples, 0)
	if err != nil {
		return err
	}

	fmt.Printf("Trained on %d examples from %s in %s (run %s)\n\n",
		state.TrainingSamples, src.Name(), state.Duration.Round(time.Millisecond), state.RunID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tCV ACCURACY\tSTD")
	for _, rec := range state.Records() {
		fmt.Fprintf(w, "%s\t%.3f\t± %.3f\n", rec.Name, rec.Accuracy, rec.Std)
	}
	w.Flush()

	sample := models.RawMatchStats{
		HomeGoals: 2, AwayGoals: 1,
		HomeShots: 15, AwayShots: 10,
		HomeShotsOnTarget: 8, AwayShotsOnTarget: 5,
	}
	fmt.Printf("\nSample 2-1 (15/10 shots, 8/5 on target):\n")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range logic.NewTrainedPredictor(state).Predict(sample) {
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%v\n", p.ModelName, p.Outcome, p.Confidence, p.Probabilities)
	}
	return w.Flush()
}
