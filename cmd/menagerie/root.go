package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/menagerie/internal/config"
	"github.com/crimson-sun/menagerie/internal/engine/infer"
	"github.com/crimson-sun/menagerie/internal/engine/trainer"
	"github.com/crimson-sun/menagerie/internal/logging"
	"github.com/crimson-sun/menagerie/internal/model"
	"github.com/crimson-sun/menagerie/internal/pipeline"
	"github.com/crimson-sun/menagerie/internal/preprocess"
)

// exportedModelName is the file the train command writes under the inference
// artifacts directory and the predict command reads back.
const exportedModelName = "mobilenetv2_inference.onnx"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "menagerie",
		Short:         "On-device transfer learning for the dog/cat/elephant/cow classifier",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newTrainCommand(), newPredictCommand())
	return root
}

func newTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fine-tune the checkpoint on the class image dataset and export an inference model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			applyTrainFlags(cmd, &cfg)
			logging.Init(logging.ParseLevel(cfg.Log.Level))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runTrain(ctx, cfg)
		},
	}
	cmd.Flags().Int("epochs", 0, "override number of training epochs")
	cmd.Flags().Int("samples-per-class", 0, "override samples used per class")
	cmd.Flags().String("data-root", "", "override dataset root directory")
	return cmd
}

func applyTrainFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("epochs") {
		cfg.Train.Epochs, _ = cmd.Flags().GetInt("epochs")
	}
	if cmd.Flags().Changed("samples-per-class") {
		cfg.Train.SamplesPerClass, _ = cmd.Flags().GetInt("samples-per-class")
	}
	if cmd.Flags().Changed("data-root") {
		cfg.Data.Root, _ = cmd.Flags().GetString("data-root")
	}
}

func runTrain(ctx context.Context, cfg config.Config) error {
	artifacts := trainer.DefaultArtifacts(cfg.Train.ArtifactsDir)
	session, err := trainer.NewSession(cfg.Runtime.LibraryPath, artifacts, model.NumLabels)
	if err != nil {
		return err
	}
	defer session.Close()

	driver := trainer.NewDriver(session, session.Optimizer(), preprocess.FromFile, trainer.Config{
		Epochs:          cfg.Train.Epochs,
		SamplesPerClass: cfg.Train.SamplesPerClass,
	})

	if _, err := pipeline.Train(ctx, driver, cfg.Data.Root); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Infer.ArtifactsDir, 0o755); err != nil {
		return fmt.Errorf("creating inference artifacts dir: %w", err)
	}
	exportPath := filepath.Join(cfg.Infer.ArtifactsDir, exportedModelName)
	if err := pipeline.Export(session, exportPath, cfg.Infer.OutputName); err != nil {
		return err
	}

	if cfg.Train.SaveCheckpoint {
		if err := session.SaveCheckpoint(artifacts.Checkpoint); err != nil {
			return err
		}
	}
	return nil
}

func newPredictCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Run the exported model over the held-out test images and print per-class probabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logging.Init(logging.ParseLevel(cfg.Log.Level))
			return runPredict(cfg)
		},
	}
}

func runPredict(cfg config.Config) error {
	modelPath := filepath.Join(cfg.Infer.ArtifactsDir, exportedModelName)
	engine, err := infer.NewEngine(cfg.Runtime.LibraryPath, modelPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	images, err := pipeline.TestImages(cfg.Infer.ArtifactsDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no test images under %s", cfg.Infer.ArtifactsDir)
	}

	return pipeline.Verify(infer.NewVerifier(engine), images, os.Stdout)
}
