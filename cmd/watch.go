package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modernlint/loopconv/convert"
	"github.com/modernlint/loopconv/internal/watcher"
)

var debounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-check files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		engine := newEngine()

		w, err := watcher.New(logger, debounce)
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		defer w.Close()

		err = w.Watch(args, func(files []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			issues, err := convert.ProcessFiles(ctx, logger, engine, files)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Printf("No convertible loops in %d changed file(s)\n", len(files))
				return nil
			}
			printIssues(logger, issues, false, "")
			return nil
		})
		if err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}

		fmt.Println("Watching for changes. Press Ctrl+C to stop.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	},
}

func init() {
	watchCmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before re-checking changed files")
}
