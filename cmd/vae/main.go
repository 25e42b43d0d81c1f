// Package main provides the VAE training CLI.
//
// Usage:
//
//	vae -data ./datasets -n_z 20 -estimator all -epochs 100
//	vae -synthetic -estimator mc -n_samples 10 -epochs 5
//	vae -synthetic -hidden 400,200,200,400 -estimator reparam
//	vae -mode test -restore checkpoints/mc-epoch-100.born -estimator mc
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/born-ml/vae/internal/dataset"
	"github.com/born-ml/vae/internal/parallel"
	"github.com/born-ml/vae/internal/train"
	"github.com/born-ml/vae/internal/vae"
	"github.com/klauspost/cpuid/v2"
)

const version = "v0.1.0"

// errNoCheckpoint is returned when test mode has no weights to evaluate.
var errNoCheckpoint = errors.New("test mode requires -restore")

type options struct {
	dataDir      string
	synthetic    bool
	latentDim    int
	hidden       string
	decoder      string
	learningRate float64
	estimator    string
	samples      int
	optimizer    string
	epochs       int
	batchSize    int
	testBatch    int
	saveDir      string
	saveStep     int
	seed         uint64
	mode         string
	restore      string
	reportPath   string
	logEvery     int
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dataDir, "data", "./datasets", "Directory containing MNIST IDX files")
	flag.BoolVar(&o.synthetic, "synthetic", false, "Use synthetic data (for testing without MNIST files)")
	flag.IntVar(&o.latentDim, "n_z", 20, "Size of the stochastic layer")
	flag.StringVar(&o.hidden, "hidden", "500", "Hidden widths: one value for every layer, or encoder1,encoder2,decoder1,decoder2")
	flag.StringVar(&o.decoder, "decoder", "bernoulli", "Decoder distribution: bernoulli or gaussian")
	flag.Float64Var(&o.learningRate, "l_r", 0.001, "Learning rate")
	flag.StringVar(&o.estimator, "estimator", "all", "Encoder gradient estimator: reparam, score, mc or all")
	flag.IntVar(&o.samples, "n_samples", vae.DefaultMonteCarloSamples, "Monte Carlo baseline samples (mc estimator)")
	flag.StringVar(&o.optimizer, "optimizer", "adam", "Optimizer: adam or sgd")
	flag.IntVar(&o.epochs, "epochs", 10, "Number of training epochs")
	flag.IntVar(&o.batchSize, "batch", 128, "Training batch size")
	flag.IntVar(&o.testBatch, "test_b_size", 1024, "Validation and test batch size")
	flag.StringVar(&o.saveDir, "save_dir", "checkpoints", "Checkpoint directory")
	flag.IntVar(&o.saveStep, "save_step", 100, "Save weights every N epochs (0 = never)")
	flag.Uint64Var(&o.seed, "seed", 1234, "Random seed")
	flag.StringVar(&o.mode, "mode", "train", "train or test")
	flag.StringVar(&o.restore, "restore", "", "Checkpoint to restore before training or testing")
	flag.StringVar(&o.reportPath, "report", "", "Write per-epoch reports as CSV to this path")
	flag.IntVar(&o.logEvery, "log_every", 100, "Log training loss every N steps (0 = never)")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vae %s\n", version)
		os.Exit(0)
	}
	return o
}

func main() {
	o := parseFlags()

	fmt.Printf("VAE gradient estimator workbench %s\n", version)
	fmt.Printf("   CPU: %s (%d physical cores, %d workers)\n", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, parallel.Workers())

	splits, err := loadData(o)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("\nMNIST data files not found in", o.dataDir)
			fmt.Println("Place train-images-idx3-ubyte(.gz) and t10k-images-idx3-ubyte(.gz) there,")
			fmt.Println("or run with -synthetic to use generated images.")
			os.Exit(1)
		}
		log.Fatalf("Failed to load data: %v", err)
	}
	fmt.Printf("   Train: %d, Validation: %d, Test: %d examples of %d pixels\n",
		splits.Train.Len(), splits.Validation.Len(), splits.Test.Len(), splits.Train.Dim())

	estimators, err := parseEstimators(o.estimator, o.samples)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var reports []train.Report
	for _, est := range estimators {
		r, err := run(ctx, o, splits, est)
		reports = append(reports, r...)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("[%s] interrupted", est.Name())
				break
			}
			log.Fatalf("[%s] %v", est.Name(), err)
		}
	}

	if o.reportPath != "" && len(reports) > 0 {
		if err := writeReports(o.reportPath, reports); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("\nReport written to %s\n", o.reportPath)
	}
}

func loadData(o options) (*dataset.Splits, error) {
	if o.synthetic {
		fmt.Println("\nUsing synthetic data...")
		return dataset.SyntheticSplits(2000, 500, 500, 784, vae.NewRand(o.seed+1)), nil
	}
	fmt.Printf("\nLoading MNIST data from: %s\n", o.dataDir)
	return dataset.Load(o.dataDir, dataset.DefaultValidationSize)
}

func parseEstimators(name string, samples int) ([]vae.Estimator, error) {
	names := []string{name}
	if name == "all" {
		names = []string{"reparam", "score", "mc"}
	}
	estimators := make([]vae.Estimator, 0, len(names))
	for _, n := range names {
		est, err := vae.EstimatorByName(strings.TrimSpace(n), samples)
		if err != nil {
			return nil, err
		}
		estimators = append(estimators, est)
	}
	return estimators, nil
}

// parseArchitecture reads either a single width for all four hidden layers
// or four comma-separated widths in the order encoder1, encoder2, decoder1,
// decoder2.
func parseArchitecture(s string) (vae.Architecture, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 1 && len(fields) != 4 {
		return vae.Architecture{}, fmt.Errorf("hidden %q: want 1 or 4 widths, got %d", s, len(fields))
	}
	widths := make([]int, len(fields))
	for i, f := range fields {
		w, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return vae.Architecture{}, fmt.Errorf("hidden %q: %w", s, err)
		}
		if w <= 0 {
			return vae.Architecture{}, fmt.Errorf("hidden %q: width %d must be positive", s, w)
		}
		widths[i] = w
	}
	if len(widths) == 1 {
		return vae.Uniform(widths[0]), nil
	}
	return vae.Architecture{
		EncoderHidden1: widths[0],
		EncoderHidden2: widths[1],
		DecoderHidden1: widths[2],
		DecoderHidden2: widths[3],
	}, nil
}

// run trains or tests one estimator. Every estimator starts from the same
// seed, so all of them see identical initial weights.
func run(ctx context.Context, o options, splits *dataset.Splits, est vae.Estimator) ([]train.Report, error) {
	switch o.mode {
	case "train":
	case "test":
		if o.restore == "" {
			return nil, errNoCheckpoint
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", o.mode)
	}

	arch, err := parseArchitecture(o.hidden)
	if err != nil {
		return nil, err
	}

	cfg := vae.Config{
		InputDim:     splits.Train.Dim(),
		LatentDim:    o.latentDim,
		Architecture: arch,
		Decoder:      vae.DecoderDistribution(o.decoder),
		LearningRate: o.learningRate,
		Estimator:    est,
		Optimizer:    vae.OptimizerKind(o.optimizer),
	}

	rng := vae.NewRand(o.seed)
	model, err := vae.New(cfg, rng)
	if err != nil {
		return nil, err
	}
	defer model.Close()

	fmt.Printf("\n[%s] %d parameters, decoder=%s, optimizer=%s, lr=%g\n",
		est.Name(), model.Network().NumParameters(), cfg.Decoder, cfg.Optimizer, cfg.LearningRate)

	if o.restore != "" {
		if err := model.RestoreWeights(o.restore); err != nil {
			return nil, err
		}
		fmt.Printf("[%s] restored weights from %s\n", est.Name(), o.restore)
	}

	trainer := &train.Trainer{
		Model:      model,
		Train:      splits.Train,
		Validation: splits.Validation,
		Test:       splits.Test,
		Rng:        rng,
		Config: train.Config{
			Epochs:        o.epochs,
			BatchSize:     o.batchSize,
			EvalBatchSize: o.testBatch,
			SaveEvery:     o.saveStep,
			CheckpointDir: o.saveDir,
			LogEvery:      o.logEvery,
			VarianceEvery: 1,
		},
	}

	var reports []train.Report
	if o.mode == "train" {
		reports, err = trainer.Run(ctx)
		if err != nil {
			return reports, err
		}
	}

	loss, logDensity, err := trainer.Evaluate(splits.Test)
	if err != nil {
		return reports, err
	}
	fmt.Printf("[%s] test loss=%.4f log p(x|z)=%.4f\n", est.Name(), loss, logDensity)
	return reports, nil
}

func writeReports(path string, reports []train.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := train.WriteCSV(f, reports); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
